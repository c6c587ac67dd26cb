package http

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	SessionCookie    = "zen_session"
	sessionMaxAge    = 365 * 24 * 60 * 60
	minSessionSecret = 16
)

type sessionKey struct{}

// Sessions issues and verifies the signed cookie carrying the user id that
// keys the stored Google token.
type Sessions struct {
	secret []byte
	secure bool
}

// NewSessions signs with secret; an empty secret gets a random one, which
// invalidates sessions on restart.
func NewSessions(secret string, secure bool) *Sessions {
	key := []byte(secret)
	if len(key) < minSessionSecret {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Sessions{secret: key, secure: secure}
}

func (s *Sessions) sign(userID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(userID))
	return userID + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify returns the user id of a cookie value, or "" when it was tampered with.
func (s *Sessions) Verify(value string) string {
	userID, _, ok := strings.Cut(value, ".")
	if !ok {
		return ""
	}
	if _, err := uuid.Parse(userID); err != nil {
		return ""
	}
	if !hmac.Equal([]byte(s.sign(userID)), []byte(value)) {
		return ""
	}
	return userID
}

// Cookie builds the session cookie for userID.
func (s *Sessions) Cookie(userID string, r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    s.sign(userID),
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   s.secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware resolves the session user, issuing a new id on first contact.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			userID = s.Verify(c.Value)
		}
		if userID == "" {
			userID = uuid.NewString()
			http.SetCookie(w, s.Cookie(userID, r))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, userID)))
	})
}

// UserID returns the session user of a request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
