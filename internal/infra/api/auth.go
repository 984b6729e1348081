package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"mindmend/internal/domain"
	"mindmend/internal/infra/logging"
)

// ClientClaims identify an API client allowed to call the respond endpoints.
type ClientClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

const scopeRespond = "respond"

// Authenticator issues and checks HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Mint signs a token for subject valid for ttl.
func (a *Authenticator) Mint(subject string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := ClientClaims{
		Scope: scopeRespond,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) ParseFromRequest(r *http.Request) (*ClientClaims, error) {
	// Authorization: Bearer <jwt>
	hdr := r.Header.Get("Authorization")
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *Authenticator) parse(tok string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Scope != scopeRespond {
		return nil, errors.New("token scope mismatch")
	}
	return claims, nil
}

// Guard rejects requests without a valid bearer token. A nil Authenticator is open.
func (a *Authenticator) Guard(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		if a == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := a.ParseFromRequest(r); err != nil {
				l := logging.With(r.Context(), logger)
				l.Debug().Err(err).Msg("auth rejected")
				writeError(w, domain.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
