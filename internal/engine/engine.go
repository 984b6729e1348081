// Package engine turns one user message into a structured reflective reply.
//
// Every decision is keyword or pattern matching over a static Lexicon; an
// Engine holds no mutable state and is safe for concurrent use.
package engine

import (
	"time"

	"mindmend/internal/domain/model"
)

type Engine struct {
	lex *Lexicon
	now func() time.Time
}

type Option func(*Engine)

// WithClock overrides the timestamp source for composed messages.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(lex *Lexicon, opts ...Option) *Engine {
	e := &Engine{lex: lex, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Default builds an Engine over the embedded lexicon.
func Default(opts ...Option) (*Engine, error) {
	lex, err := DefaultLexicon()
	if err != nil {
		return nil, err
	}
	return New(lex, opts...), nil
}

func (e *Engine) Lexicon() *Lexicon { return e.lex }

// Analyze extracts the independent signals of message without composing a reply.
func (e *Engine) Analyze(message string) model.Analysis {
	text := Normalize(message)
	return model.Analysis{
		Sentiment:   e.lex.analyzeSentiment(text),
		Themes:      e.lex.extractThemes(text),
		Distortions: e.lex.DetectDistortions(message),
		Feelings:    e.lex.feelingsIn(text),
	}
}

// GenerateResponse composes the full reply to message. history is accepted so
// callers can pass conversation context, but no rule reads it.
func (e *Engine) GenerateResponse(history []model.Message, message string) model.TherapistResponse {
	resp, _ := e.GenerateWithAnalysis(history, message)
	return resp
}

// GenerateWithAnalysis is GenerateResponse that also returns the signals the reply
// was composed from.
func (e *Engine) GenerateWithAnalysis(history []model.Message, message string) (model.TherapistResponse, model.Analysis) {
	a := e.Analyze(message)
	reply := model.NewAssistantMessage(
		e.lex.Compose(a.Sentiment, a.Themes, message),
		e.now(),
		model.MessageMetadata{
			Sentiment:  a.Sentiment.Label,
			Confidence: e.lex.replyConfidence,
			Topics:     a.Themes,
		},
	)

	return model.TherapistResponse{
		Reply:           reply,
		Insights:        e.lex.BuildInsights(a.Themes, a.Distortions, a.Sentiment),
		Techniques:      e.lex.SelectTechniques(a.Themes, a.Sentiment),
		FollowUpPrompts: e.lex.FollowUpPrompts(a.Themes, a.Distortions),
		Grounding:       e.lex.SelectGrounding(a.Themes, a.Sentiment),
	}, a
}

// Greeting is the assistant's opening message for a new conversation.
func (e *Engine) Greeting() model.Message {
	return model.NewAssistantMessage(e.lex.greeting.Text, e.now(), model.MessageMetadata{
		Sentiment:  model.SentimentNeutral,
		Confidence: e.lex.greeting.Confidence,
	})
}
