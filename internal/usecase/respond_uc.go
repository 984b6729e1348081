// File: internal/usecase/respond_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mindmend/internal/domain"
	"mindmend/internal/domain/model"
	"mindmend/internal/domain/ports/repository"
	"mindmend/internal/infra/logging"
	"mindmend/internal/infra/metrics"
)

// Compile-time check
var _ RespondUseCase = (*respondUC)(nil)

type RespondUseCase interface {
	Respond(ctx context.Context, history []model.Message, message string) (*model.TherapistResponse, error)
	Analyze(ctx context.Context, message string) (*model.Analysis, error)
	Greeting(ctx context.Context) model.Message
}

// ResponseEngine is the rule engine behind the use case; *engine.Engine implements it.
type ResponseEngine interface {
	Analyze(message string) model.Analysis
	GenerateWithAnalysis(history []model.Message, message string) (model.TherapistResponse, model.Analysis)
	Greeting() model.Message
}

type respondUC struct {
	engine       ResponseEngine
	cache        repository.ResponseCache // nil disables caching
	historyLimit int
	now          func() time.Time
	log          *zerolog.Logger
	devMode      bool
}

func NewRespondUseCase(engine ResponseEngine, cache repository.ResponseCache, historyLimit int, logger *zerolog.Logger, devMode bool) *respondUC {
	return &respondUC{
		engine:       engine,
		cache:        cache,
		historyLimit: historyLimit,
		now:          time.Now,
		log:          logger,
		devMode:      devMode,
	}
}

func (u *respondUC) Respond(ctx context.Context, history []model.Message, message string) (*model.TherapistResponse, error) {
	defer logging.TraceDuration(u.log, "RespondUC.Respond")()
	start := time.Now()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidMessage
	}
	history = model.RecentMessages(history, u.historyLimit)
	log := logging.With(ctx, u.log)

	if resp, ok := u.fromCache(ctx, log, message); ok {
		metrics.ObserveAnalysis(u.engine.Analyze(message), resp.Grounding)
		metrics.ObserveRespondLatency(msSince(start), true)
		log.Debug().Str("message", logging.Redact(message, u.devMode)).Msg("respond: cache hit")
		return resp, nil
	}

	resp, a := u.engine.GenerateWithAnalysis(history, message)
	if u.cache != nil {
		if err := u.cache.Set(ctx, message, &resp); err != nil {
			log.Warn().Err(err).Msg("respond: cache store failed")
		}
	}

	metrics.ObserveAnalysis(a, resp.Grounding)
	metrics.ObserveRespondLatency(msSince(start), false)
	log.Info().
		Str("sentiment", string(a.Sentiment.Label)).
		Int("score", a.Sentiment.Score).
		Int("themes", len(a.Themes)).
		Int("distortions", len(a.Distortions)).
		Int("history", len(history)).
		Bool("grounding", resp.Grounding.Present()).
		Msg("respond: composed")
	return &resp, nil
}

// fromCache returns a cached response restamped with the current time.
// Backend failures degrade to composing afresh.
func (u *respondUC) fromCache(ctx context.Context, log *zerolog.Logger, message string) (*model.TherapistResponse, bool) {
	if u.cache == nil {
		return nil, false
	}
	resp, err := u.cache.Get(ctx, message)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Warn().Err(err).Msg("respond: cache lookup failed")
		}
		return nil, false
	}
	resp.Reply.Timestamp = u.now().UTC()
	return resp, true
}

func (u *respondUC) Analyze(ctx context.Context, message string) (*model.Analysis, error) {
	defer logging.TraceDuration(u.log, "RespondUC.Analyze")()
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidMessage
	}
	a := u.engine.Analyze(message)
	return &a, nil
}

func (u *respondUC) Greeting(ctx context.Context) model.Message {
	return u.engine.Greeting()
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
