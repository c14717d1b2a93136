package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"lightquote/services"
)

type contextKey string

const SessionKey contextKey = "estimatorSession"

const sessionCookieName = "estimator_session"

var errNoSession = errors.New("no estimator session on request")

// SessionRegistry keeps the estimator sessions of all visitors, keyed by the
// session cookie.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*services.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*services.Session)}
}

// Get returns the session with the given id.
func (r *SessionRegistry) Get(id string) (*services.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Create starts a new session under a fresh random id.
func (r *SessionRegistry) Create() *services.Session {
	s := services.NewSession(uuid.NewString())
	s.Subscribe(func(v services.SummaryView) {
		log.Printf("session %s: %d item(s), grand total %s", s.ID, v.ItemCount, v.GrandTotal)
	})

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many were removed.
func (r *SessionRegistry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.IdleSince(now) > ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// GetSession extracts the estimator session from the request context.
func GetSession(r *http.Request) *services.Session {
	if val, ok := r.Context().Value(SessionKey).(*services.Session); ok {
		return val
	}
	return nil
}

func withSession(r *http.Request, s *services.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, s))
}

func sessionFor(e *core.RequestEvent) (*services.Session, error) {
	if s := GetSession(e.Request); s != nil {
		return s, nil
	}
	return nil, errNoSession
}

// SessionMiddleware reads the "estimator_session" cookie, resolves or creates
// the visitor's session and stores it in the request context.
func SessionMiddleware(reg *SessionRegistry) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var s *services.Session

		cookie, err := e.Request.Cookie(sessionCookieName)
		if err == nil && cookie.Value != "" {
			if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
				s, _ = reg.Get(cookie.Value)
			}
		}

		if s == nil {
			s = reg.Create()
			http.SetCookie(e.Response, &http.Cookie{
				Name:     sessionCookieName,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		e.Request = withSession(e.Request, s)
		return e.Next()
	}
}
