package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mindmend/internal/config"
	"mindmend/internal/domain"
	"mindmend/internal/domain/ports/adapter"
	"mindmend/internal/domain/ports/repository"
	"mindmend/internal/infra/i18n"
	"mindmend/internal/infra/logging"
	"mindmend/internal/infra/metrics"
	red "mindmend/internal/infra/redis"
	"mindmend/internal/infra/worker"
	"mindmend/internal/usecase"
)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter answers chat messages with composed responses, processing
// updates concurrently on a worker pool.
type RealTelegramBotAdapter struct {
	bot     botAPI
	uc      usecase.RespondUseCase
	limiter repository.RateLimiter
	limit   config.RateLimitConfig
	tr      *i18n.Translator
	pool    *worker.Pool
	log     *zerolog.Logger
	devMode bool
}

// NewRealTelegramBotAdapter connects to Telegram with cfg.Token. limiter may be nil.
func NewRealTelegramBotAdapter(cfg *config.Config, uc usecase.RespondUseCase, limiter repository.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is empty")
	}
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Lang)
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, uc, limiter, tr, logger), nil
}

func newAdapter(bot botAPI, cfg *config.Config, uc usecase.RespondUseCase, limiter repository.RateLimiter, tr *i18n.Translator, logger *zerolog.Logger) *RealTelegramBotAdapter {
	return &RealTelegramBotAdapter{
		bot:     bot,
		uc:      uc,
		limiter: limiter,
		limit:   cfg.RateLimit,
		tr:      tr,
		pool:    worker.NewPool(cfg.Bot.Workers, logger),
		log:     logger,
		devMode: cfg.Runtime.Dev,
	}
}

// StartPolling receives updates until ctx is canceled, then waits for in-flight handlers.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	r.pool.Start(ctx)
	defer r.pool.Stop()
	defer r.bot.StopReceivingUpdates()

	r.log.Info().Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := r.pool.Submit(func(ctx context.Context) error {
				return r.handleUpdate(ctx, update)
			}); err != nil {
				r.log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("telegram update dropped")
			}
		}
	}
}

// SendMessage sends plain text to a chat.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageRunes))
	msg.DisableWebPagePreview = true
	_, err := r.bot.Send(msg)
	return err
}

// handleUpdate processes a single Telegram update.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	if update.Message == nil || update.Message.Chat == nil {
		return nil
	}
	chatID := update.Message.Chat.ID
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithChatID(ctx, chatID)
	log := logging.With(ctx, r.log)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("telegram handler panicked")
			err = r.SendMessage(ctx, chatID, r.tr.T("bot.fallback"))
		}
	}()

	if update.Message.IsCommand() {
		return r.handleCommand(ctx, chatID, update.Message.Command())
	}

	metrics.IncTelegramUpdate("text")
	text := update.Message.Text
	if strings.TrimSpace(text) == "" {
		return r.SendMessage(ctx, chatID, r.tr.T("bot.text_only"))
	}
	if !r.allow(ctx, chatID) {
		return r.SendMessage(ctx, chatID, r.tr.T("bot.slow_down"))
	}

	resp, err := r.uc.Respond(ctx, nil, text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMessage) {
			return r.SendMessage(ctx, chatID, r.tr.T("bot.text_only"))
		}
		log.Error().Err(err).Msg("respond failed")
		return r.SendMessage(ctx, chatID, r.tr.T("bot.fallback"))
	}
	log.Debug().Str("text", logging.Redact(text, r.devMode)).Msg("telegram reply composed")
	return r.SendMessage(ctx, chatID, FormatResponse(r.tr, resp))
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, chatID int64, cmd string) error {
	metrics.IncTelegramUpdate(cmd)
	switch cmd {
	case "start":
		return r.SendMessage(ctx, chatID, r.uc.Greeting(ctx).Content)
	case "help":
		return r.SendMessage(ctx, chatID, r.tr.T("bot.help"))
	default:
		return r.SendMessage(ctx, chatID, r.tr.T("bot.unknown_command", cmd))
	}
}

// allow applies the per-chat rate limit; limiter failures allow the message.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, chatID int64) bool {
	if r.limiter == nil || r.limit.Requests <= 0 {
		return true
	}
	ok, err := r.limiter.Allow(ctx, red.ChatCommandKey(chatID, "respond"), r.limit.Requests, r.limit.Window)
	if err != nil {
		l := logging.With(ctx, r.log)
		l.Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered("telegram")
	}
	return ok
}
