//go:build !integration

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mindmend/internal/config"
	"mindmend/internal/domain/model"
	"mindmend/internal/engine"
	"mindmend/internal/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

//
// -------------------- test helpers --------------------
//

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(t.TempDir()+"/none.yaml", false)
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, limiter *memLimiter, auth *Authenticator) http.Handler {
	t.Helper()
	e, err := engine.Default()
	require.NoError(t, err)
	uc := usecase.NewRespondUseCase(e, nil, cfg.Server.HistoryLimit, newLogger(), false)
	var srv *Server
	if limiter == nil {
		srv = NewServer(uc, cfg, nil, auth, newLogger())
	} else {
		srv = NewServer(uc, cfg, limiter, auth, newLogger())
	}
	return srv.Router()
}

func post(t *testing.T, h http.Handler, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

//
// -------------------- tests --------------------
//

func TestRespond(t *testing.T) {
	h := newTestServer(t, testConfig(t), nil, nil)

	t.Run("end to end", func(t *testing.T) {
		rec := post(t, h, "/api/respond", `{"history":[],"message":"I feel like such a failure at work, I always mess up and it's a disaster"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
		}
		assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))

		var body struct {
			Reply           model.Message            `json:"reply"`
			Insights        []model.Insight          `json:"insights"`
			Techniques      []model.CopingTechnique  `json:"techniques"`
			FollowUpPrompts []string                 `json:"followUpPrompts"`
			Grounding       *model.GroundingPractice `json:"grounding"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, model.RoleAssistant, body.Reply.Role)
		require.NotNil(t, body.Reply.Metadata)
		assert.Equal(t, model.SentimentNegative, body.Reply.Metadata.Sentiment)
		assert.Equal(t, "Name & reframe", body.Techniques[0].Label)
		require.NotNil(t, body.Grounding)
		assert.Equal(t, "Box Breathing", body.Grounding.Name)
		assert.GreaterOrEqual(t, len(body.FollowUpPrompts), 2)
	})

	t.Run("grounding omitted when not suggested", func(t *testing.T) {
		rec := post(t, h, "/api/respond", `{"message":"The weather is nice today"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		_, has := raw["grounding"]
		assert.False(t, has)
	})

	t.Run("lenient history", func(t *testing.T) {
		for _, hist := range []string{`"not an array"`, `null`, `[{"role":"user","content":"hi","timestamp":"10:30 AM"}]`, `42`} {
			rec := post(t, h, "/api/respond", `{"history":`+hist+`,"message":"hello"}`, nil)
			assert.Equal(t, http.StatusOK, rec.Code, "history %s: %s", hist, rec.Body.String())
		}
	})

	t.Run("invalid message is 400", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"message":42}`, `{"message":"   "}`, `{"message":null}`, `not json`, ``, `[]`} {
			rec := post(t, h, "/api/respond", body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("body %q: want 400, got %d, body=%s", body, rec.Code, rec.Body.String())
			}
			assert.JSONEq(t, `{"error":"Invalid message"}`, rec.Body.String())
		}
	})

	t.Run("body too large", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Server.MaxBodyBytes = 32
		small := newTestServer(t, cfg, nil, nil)
		rec := post(t, small, "/api/respond", `{"message":"`+strings.Repeat("x", 100)+`"}`, nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.JSONEq(t, `{"error":"Message too large"}`, rec.Body.String())

		rec = post(t, small, "/api/analyze", `{"message":"`+strings.Repeat("x", 100)+`"}`, nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

		rec = post(t, small, "/api/respond", `{"message":"fits"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAnalyzeAndGreeting(t *testing.T) {
	h := newTestServer(t, testConfig(t), nil, nil)

	rec := post(t, h, "/api/analyze", `{"message":"This is a complete disaster, I always fail"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var a model.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, []model.Distortion{model.DistortionAllOrNothing, model.DistortionCatastrophizing}, a.Distortions)

	req := httptest.NewRequest(http.MethodGet, "/api/greeting", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var g model.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Contains(t, g.Content, "MindMend")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, testConfig(t), nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	off := false
	cfg := testConfig(t)
	cfg.Metrics.Enabled = &off
	rec = httptest.NewRecorder()
	newTestServer(t, cfg, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoverReturnsApology(t *testing.T) {
	srv := NewServer(panickyUC{}, testConfig(t), nil, nil, newLogger())
	rec := post(t, srv.Router(), "/api/respond", `{"message":"hello"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d, body=%s", rec.Code, rec.Body.String())
	}
	assert.JSONEq(t, `{"error":"I'm having trouble formulating a thoughtful response right now. Can we try again?"}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Requests = 2
	cfg.RateLimit.Window = time.Minute
	limiter := newMemLimiter()
	h := newTestServer(t, cfg, limiter, nil)

	hdr := map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}
	for i := 0; i < 2; i++ {
		rec := post(t, h, "/api/respond", `{"message":"hello"}`, hdr)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := post(t, h, "/api/respond", `{"message":"hello"}`, hdr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, 3, limiter.counts["rate_limit:203.0.113.9:respond"])

	// other clients are unaffected
	rec = post(t, h, "/api/respond", `{"message":"hello"}`, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("limiter outage lets requests through", func(t *testing.T) {
		limiter.err = errors.New("redis down")
		rec := post(t, h, "/api/respond", `{"message":"hello"}`, hdr)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestJWTGuard(t *testing.T) {
	auth := NewAuthenticator("test-secret")
	h := newTestServer(t, testConfig(t), nil, auth)

	rec := post(t, h, "/api/respond", `{"message":"hello"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := auth.Mint("web-client", time.Hour)
	require.NoError(t, err)
	rec = post(t, h, "/api/respond", `{"message":"hello"}`, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewAuthenticator("other").Mint("x", time.Hour)
		require.NoError(t, err)
		rec := post(t, h, "/api/respond", `{"message":"hello"}`, map[string]string{"Authorization": "Bearer " + other})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewAuthenticator("test-secret")
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		expired, err := old.Mint("x", time.Hour)
		require.NoError(t, err)
		rec := post(t, h, "/api/respond", `{"message":"hello"}`, map[string]string{"Authorization": "Bearer " + expired})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health stays open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
