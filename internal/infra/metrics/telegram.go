package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(telegramUpdatesTotal, workerJobsTotal)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts incoming messages and commands from Telegram chats.",
		},
		[]string{"command"}, // "text" for plain messages
	)

	workerJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_total",
			Help: "Jobs handled by the worker pool, labeled by status.",
		},
		[]string{"status"}, // completed | panicked | dropped
	)
)

func IncTelegramUpdate(command string) {
	telegramUpdatesTotal.WithLabelValues(norm(command)).Inc()
}

func IncWorkerJob(status string) {
	workerJobsTotal.WithLabelValues(norm(status)).Inc()
}
