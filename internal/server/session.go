// session.go - Signed session cookies identifying a browser across requests.
//
// The cookie only carries an opaque session id and its expiry; everything
// keyed by the session (the pending flash notice) lives in a FlashStore.
package server

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionConfig holds cookie settings for the session middleware.
type SessionConfig struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	SecureCookie bool
}

type sessionPayload struct {
	SID string `json:"sid"`
	Exp int64  `json:"exp"`
}

const sessionIDKey ctxKey = "session_id"

// NewSessionSecret returns 32 random bytes for signing cookies when no
// secret is configured. Sessions then do not survive a restart.
func NewSessionSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s SessionConfig) cookieName() string {
	if s.CookieName == "" {
		return "bigform_session"
	}
	return s.CookieName
}

func (s SessionConfig) ttl() time.Duration {
	if s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func signPayload(secret []byte, msg string) string {
	m := hmac.New(sha256.New, secret)
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

func encodeSession(p sessionPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeSession(token string) (sessionPayload, error) {
	var p sessionPayload
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, err
	}
	return p, nil
}

// makeToken returns "payload.signature" for a session id.
func (s SessionConfig) makeToken(sid string) (string, time.Time, error) {
	exp := time.Now().Add(s.ttl())
	payload, err := encodeSession(sessionPayload{SID: sid, Exp: exp.Unix()})
	if err != nil {
		return "", time.Time{}, err
	}
	return payload + "." + signPayload(s.Secret, payload), exp, nil
}

func (s SessionConfig) verifyToken(tok string) (sessionPayload, error) {
	var p sessionPayload
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return p, errors.New("invalid token format")
	}
	want := signPayload(s.Secret, parts[0])
	if !hmac.Equal([]byte(parts[1]), []byte(want)) {
		return p, errors.New("invalid signature")
	}
	decoded, err := decodeSession(parts[0])
	if err != nil {
		return p, err
	}
	if decoded.Exp <= time.Now().Unix() {
		return p, errors.New("expired")
	}
	if decoded.SID == "" {
		return p, errors.New("empty session id")
	}
	return decoded, nil
}

// sessionMiddleware guarantees a session id on the request context. A
// missing, tampered or expired cookie is replaced by a fresh session.
func (s SessionConfig) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(s.cookieName()); err == nil {
			if p, err := s.verifyToken(c.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), p.SID)))
				return
			}
		}

		sid := uuid.NewString()
		tok, exp, err := s.makeToken(sid)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName(),
			Value:    tok,
			Path:     "/",
			Expires:  exp,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   s.SecureCookie,
		})
		next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), sid)))
	})
}

func withSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// SessionIDFromContext returns the session id set by the session middleware.
func SessionIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(sessionIDKey).(string); ok {
		return s
	}
	return ""
}
