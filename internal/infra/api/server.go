package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mindmend/internal/config"
	"mindmend/internal/domain"
	"mindmend/internal/domain/model"
	"mindmend/internal/domain/ports/repository"
	"mindmend/internal/infra/logging"
	"mindmend/internal/usecase"
)

const apologyText = "I'm having trouble formulating a thoughtful response right now. Can we try again?"

// Server exposes the respond use case over HTTP.
type Server struct {
	uc      usecase.RespondUseCase
	limiter repository.RateLimiter
	auth    *Authenticator
	cfg     *config.Config
	log     *zerolog.Logger
}

// NewServer wires the use case. limiter and auth may be nil to disable them.
func NewServer(uc usecase.RespondUseCase, cfg *config.Config, limiter repository.RateLimiter, auth *Authenticator, logger *zerolog.Logger) *Server {
	return &Server{uc: uc, limiter: limiter, auth: auth, cfg: cfg, log: logger}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		Recover(s.log),
		TraceID(),
		RequestLog(s.log),
		Timeout(s.cfg.Server.RequestTimeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.cfg.Metrics.On() {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(
			RateLimit(s.limiter, "respond", s.cfg.RateLimit.Requests, s.cfg.RateLimit.Window, s.log),
			s.auth.Guard(s.log),
		)
		r.Post("/respond", s.handleRespond)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/greeting", s.handleGreeting)
	})
	return r
}

// ---- wire types ----

type historyItem struct {
	Role      model.Role      `json:"role"`
	Content   string          `json:"content"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// respondResponse omits grounding when none was suggested.
type respondResponse struct {
	Reply           model.Message            `json:"reply"`
	Insights        []model.Insight          `json:"insights"`
	Techniques      []model.CopingTechnique  `json:"techniques"`
	FollowUpPrompts []string                 `json:"followUpPrompts"`
	Grounding       *model.GroundingPractice `json:"grounding,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func toRespondResponse(resp *model.TherapistResponse) respondResponse {
	return respondResponse{
		Reply:           resp.Reply,
		Insights:        resp.Insights,
		Techniques:      resp.Techniques,
		FollowUpPrompts: resp.FollowUpPrompts,
		Grounding:       resp.Grounding.Ptr(),
	}
}

// ---- handlers ----

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	message, history, err := s.decodeRequest(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.uc.Respond(r.Context(), history, message)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRespondResponse(resp))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	message, _, err := s.decodeRequest(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := s.uc.Analyze(r.Context(), message)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.uc.Greeting(r.Context()))
}

// decodeRequest reads {message, history}. message must be a string; a history that
// is absent or not an array is treated as empty.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (string, []model.Message, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return "", nil, fmt.Errorf("%w: limit %d bytes", domain.ErrTooLarge, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return "", nil, domain.ErrInvalidMessage
		}
		return "", nil, domain.ErrInvalidArgument
	}

	var message string
	if err := json.Unmarshal(raw["message"], &message); err != nil {
		return "", nil, domain.ErrInvalidMessage
	}
	return message, decodeHistory(raw["history"]), nil
}

func decodeHistory(raw json.RawMessage) []model.Message {
	var items []historyItem
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]model.Message, 0, len(items))
	for _, it := range items {
		m := model.Message{Role: it.Role, Content: it.Content}
		var ts time.Time
		if json.Unmarshal(it.Timestamp, &ts) == nil {
			m.Timestamp = ts
		}
		out = append(out, m)
	}
	return out
}

func (s *Server) logFailure(r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidMessage) || errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrTooLarge) {
		return
	}
	l := logging.With(r.Context(), s.log)
	l.Error().Err(err).Msg("respond failed")
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidMessage), errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid message"})
	case errors.Is(err, domain.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Message too large"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too many requests"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: apologyText})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
