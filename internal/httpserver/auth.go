// internal/httpserver/auth.go
//
// Player identity. Accounts live in the external service; this layer only
// reads the identity it issued. A valid JWT (bearer header or cookie) wins;
// guests get a stable anonymous cookie so the attempt ledger still holds.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxPlayerKey struct{}

const anonCookieName = "lexiround_anon"

// withPlayer resolves the request's player ID once and stores it in the
// context. It never 401s; every route here allows guests.
func (s *Server) withPlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := s.verifiedPlayer(r)
			if id == "" {
				id = s.ensureAnonID(w, r)
			}
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// playerID returns the identity resolved by withPlayer. Handlers outside
// that group fall back to the anon cookie directly.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if id, _ := r.Context().Value(ctxPlayerKey{}).(string); id != "" {
		return id
	}
	return s.ensureAnonID(w, r)
}

// verifiedPlayer extracts the player ID from a valid account-service JWT,
// or "" when none is present.
func (s *Server) verifiedPlayer(r *http.Request) string {
	tok := bearerOrCookie(r)
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
	})
	if err != nil || !t.Valid {
		return ""
	}
	if id, _ := claims["id"].(string); id != "" {
		return id
	}
	if sub, _ := claims["sub"].(string); sub != "" {
		return sub
	}
	return ""
}

// ensureAnonID returns an existing anon cookie or sets a new one.
// Used to keep guest attempts attributable across requests.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: func() http.SameSite {
			if os.Getenv("APP_ENV") == "production" {
				return http.SameSiteNoneMode
			}
			return http.SameSiteLaxMode
		}(),
		Expires: time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(getEnv("COOKIE_NAME", "lexiround_token")); err == nil {
		return c.Value
	}
	return ""
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	s := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(s) > 22 {
		return s[:22]
	}
	return s
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
