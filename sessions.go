package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/time/rate"
)

// SessionTracker counts how many pieces each live session has created and
// throttles its move/rotate volume. It is only touched from the broker
// goroutine, so the maps need no lock.
type SessionTracker struct {
	limit     int
	created   map[string]int
	limiters  map[string]*rate.Limiter
	rateLimit rate.Limit
	burst     int
	secret    []byte
}

// NewSessionTracker builds a tracker with the given creation limit and a
// per-session move/rotate budget. secret signs resume tokens.
func NewSessionTracker(limit int, perSecond float64, burst int, secret []byte) *SessionTracker {
	return &SessionTracker{
		limit:     limit,
		created:   make(map[string]int),
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Limit(perSecond),
		burst:     burst,
		secret:    secret,
	}
}

// Restore pre-loads a session's created count, used when a client presents a
// valid resume token on reconnect.
func (t *SessionTracker) Restore(sessionID string, count int) {
	if count < 0 {
		count = 0
	}
	if count > t.limit {
		count = t.limit
	}
	t.created[sessionID] = count
}

// TryReserve increments the session's created count if it is still below the
// limit, and reports whether the reservation succeeded.
func (t *SessionTracker) TryReserve(sessionID string) bool {
	if t.created[sessionID] >= t.limit {
		return false
	}
	t.created[sessionID]++
	return true
}

// Count returns the session's current created count.
func (t *SessionTracker) Count(sessionID string) int {
	return t.created[sessionID]
}

// Allow consumes one move/rotate token for the session, creating its
// limiter on first use.
func (t *SessionTracker) Allow(sessionID string) bool {
	limiter, ok := t.limiters[sessionID]
	if !ok {
		limiter = rate.NewLimiter(t.rateLimit, t.burst)
		t.limiters[sessionID] = limiter
	}
	return limiter.Allow()
}

// Release forgets the session on disconnect. Its quota is freed unless the
// client resumes with a token.
func (t *SessionTracker) Release(sessionID string) {
	delete(t.created, sessionID)
	delete(t.limiters, sessionID)
}

// IssueToken signs a resume token carrying the session's created count, so a
// reconnecting client cannot shed its quota usage by dropping the socket.
func (t *SessionTracker) IssueToken(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":     sessionID,
		"created": t.created[sessionID],
		"nbf":     time.Now().Unix(),
	})
	return token.SignedString(t.secret)
}

// ParseToken verifies a resume token and returns the created count it
// carries.
func (t *SessionTracker) ParseToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(jwtToken *jwt.Token) (interface{}, error) {
		if _, ok := jwtToken.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method: %s", jwtToken.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid resume token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("unexpected claims shape")
	}
	created, ok := claims["created"].(float64)
	if !ok {
		return 0, errors.New("resume token missing created count")
	}
	return int(created), nil
}
