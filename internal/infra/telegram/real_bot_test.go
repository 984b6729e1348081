//go:build !integration

package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mindmend/internal/config"
	"mindmend/internal/domain/model"
	"mindmend/internal/engine"
	"mindmend/internal/infra/i18n"
	"mindmend/internal/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type denyAll struct{ err error }

func (d denyAll) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, d.err
}

type brokenUC struct{ usecase.RespondUseCase }

func (brokenUC) Respond(ctx context.Context, history []model.Message, message string) (*model.TherapistResponse, error) {
	return nil, errors.New("boom")
}

func englishUI(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	require.NoError(t, err)
	return tr
}

func newTestAdapter(t *testing.T, bot *fakeBot) *RealTelegramBotAdapter {
	t.Helper()
	e, err := engine.Default()
	require.NoError(t, err)
	logger := zerolog.Nop()
	uc := usecase.NewRespondUseCase(e, nil, 8, &logger, false)
	cfg := &config.Config{Bot: config.BotConfig{Workers: 2}}
	return newAdapter(bot, cfg, uc, nil, englishUI(t), &logger)
}

func waitForSends(t *testing.T, bot *fakeBot, n int) []sentMessage {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-bot.notify:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d messages, got %d", n, len(bot.messages()))
		}
	}
	return bot.messages()
}

func TestPollingAnswersMessages(t *testing.T) {
	bot := newFakeBot()
	a := newTestAdapter(t, bot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.StartPolling(ctx) }()

	bot.updates <- commandUpdate(1, 100, "start")
	bot.updates <- textUpdate(2, 200, "I feel like such a failure at work, I always mess up and it's a disaster")

	sent := waitForSends(t, bot, 2)
	cancel()
	require.NoError(t, <-done)

	byChat := map[int64]string{}
	for _, m := range sent {
		byChat[m.ChatID] = m.Text
	}
	assert.Contains(t, byChat[100], "MindMend")
	reply := byChat[200]
	assert.Contains(t, reply, "Thank you for letting me in.")
	assert.Contains(t, reply, "Try this: Name & reframe")
	assert.Contains(t, reply, "Grounding: Box Breathing")
	assert.Contains(t, reply, "You might reflect on:")

	bot.mu.Lock()
	assert.True(t, bot.stopped)
	bot.mu.Unlock()
}

func TestHandleUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("help and unknown commands", func(t *testing.T) {
		bot := newFakeBot()
		a := newTestAdapter(t, bot)
		require.NoError(t, a.handleUpdate(ctx, commandUpdate(1, 5, "help")))
		require.NoError(t, a.handleUpdate(ctx, commandUpdate(2, 5, "plans")))
		sent := bot.messages()
		require.Len(t, sent, 2)
		assert.Contains(t, sent[0].Text, "/start")
		assert.Contains(t, sent[1].Text, "Unknown command /plans")
	})

	t.Run("non-text messages", func(t *testing.T) {
		bot := newFakeBot()
		a := newTestAdapter(t, bot)
		require.NoError(t, a.handleUpdate(ctx, textUpdate(1, 5, "  ")))
		assert.Equal(t, a.tr.T("bot.text_only"), bot.messages()[0].Text)

		require.NoError(t, a.handleUpdate(ctx, tgUpdateWithoutMessage()))
		assert.Len(t, bot.messages(), 1)
	})

	t.Run("rate limited chat", func(t *testing.T) {
		bot := newFakeBot()
		a := newTestAdapter(t, bot)
		a.limiter = denyAll{}
		a.limit = config.RateLimitConfig{Requests: 1, Window: time.Minute}
		require.NoError(t, a.handleUpdate(ctx, textUpdate(1, 5, "hello")))
		assert.Equal(t, a.tr.T("bot.slow_down"), bot.messages()[0].Text)
	})

	t.Run("limiter outage allows", func(t *testing.T) {
		bot := newFakeBot()
		a := newTestAdapter(t, bot)
		a.limiter = denyAll{err: errors.New("redis down")}
		a.limit = config.RateLimitConfig{Requests: 1, Window: time.Minute}
		require.NoError(t, a.handleUpdate(ctx, textUpdate(1, 5, "hello")))
		assert.NotEqual(t, a.tr.T("bot.slow_down"), bot.messages()[0].Text)
	})

	t.Run("use case failure sends fallback", func(t *testing.T) {
		bot := newFakeBot()
		a := newTestAdapter(t, bot)
		a.uc = brokenUC{RespondUseCase: a.uc}
		require.NoError(t, a.handleUpdate(ctx, textUpdate(1, 5, "hello")))
		assert.Equal(t, a.tr.T("bot.fallback"), bot.messages()[0].Text)
	})
}

func tgUpdateWithoutMessage() tgbotapi.Update { return tgbotapi.Update{UpdateID: 9} }

func TestFormatResponse(t *testing.T) {
	resp := &model.TherapistResponse{
		Reply:           model.Message{Content: "Body"},
		Insights:        []model.Insight{{Title: "Emotional load", Description: "Heavy."}},
		Techniques:      []model.CopingTechnique{{Label: "A", Summary: "s", Steps: []string{"one", "two"}}, {Label: "B"}},
		FollowUpPrompts: []string{"p1", "p2", "p3", "p4", "p5"},
		Grounding:       model.NoGrounding(),
	}
	tr := englishUI(t)
	out := FormatResponse(tr, resp)
	assert.True(t, strings.HasPrefix(out, "Body\n\nWhat I'm noticing:\n• Emotional load: Heavy."))
	assert.Contains(t, out, "\n1. one\n2. two")
	assert.Contains(t, out, "Also worth a look: B")
	assert.NotContains(t, out, "Grounding:")
	assert.Contains(t, out, "- p4")
	assert.NotContains(t, out, "- p5")

	long := &model.TherapistResponse{Reply: model.Message{Content: strings.Repeat("é", 5000)}}
	assert.Equal(t, maxMessageRunes, len([]rune(FormatResponse(tr, long))))
}
