package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/WessleyAI/wessley-catalog/engine/catalog"
	"github.com/google/uuid"
)

// SessionCookie carries the visitor's session id.
const SessionCookie = "catalog_session"

type session struct {
	ctl      *catalog.Controller
	lastSeen time.Time
}

// sessions keeps one controller per visitor, created on first use and
// evicted after ttl without requests.
type sessions struct {
	mu    sync.Mutex
	byID  map[string]*session
	ttl   time.Duration
	build func(id string) *catalog.Controller
	now   func() time.Time
	log   *slog.Logger
}

func newSessions(ttl time.Duration, build func(id string) *catalog.Controller, log *slog.Logger) *sessions {
	return &sessions{
		byID:  make(map[string]*session),
		ttl:   ttl,
		build: build,
		now:   time.Now,
		log:   log,
	}
}

// controller returns the visitor's controller, issuing a session cookie when
// the request carries none or an unknown one.
func (s *sessions) controller(w http.ResponseWriter, r *http.Request) *catalog.Controller {
	id := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		if u, err := uuid.Parse(c.Value); err == nil {
			id = u.String()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byID[id]; ok {
		sess.lastSeen = s.now()
		return sess.ctl
	}
	if id == "" {
		id = uuid.NewString()
	}
	sess := &session{ctl: s.build(id), lastSeen: s.now()}
	s.byID[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug("session started", "session", id)
	return sess.ctl
}

// sweep evicts sessions idle for longer than ttl and returns how many.
func (s *sessions) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	return n
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// janitor sweeps every interval until ctx is done.
func (s *sessions) janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sweep(); n > 0 {
				s.log.Info("evicted idle sessions", "count", n)
			}
		}
	}
}
