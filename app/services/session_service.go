package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"postboard/app/page"
	"postboard/app/toggle"
	"postboard/app/views"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrSessionLimit = errors.New("too many sessions")

// StoreFactory returns the toggle-state store of a session.
type StoreFactory func(sessionID string) (toggle.StateStore, error)

// Session is one viewer's page.
type Session struct {
	ID       string
	Page     *page.Page
	store    toggle.StateStore
	lastSeen time.Time
}

// SessionService hands out one page per viewer session.
type SessionService struct {
	mutex    sync.Mutex
	sessions map[string]*Session
	pending  int
	res      views.Resources
	stores   StoreFactory
	opts     page.Options
	idle     time.Duration
	max      int
	now      func() time.Time
}

// NewSessionService creates a SessionService. Sessions unused for longer than
// idle are dropped by Sweep; max caps the number of live sessions (0 means no cap).
func NewSessionService(res views.Resources, stores StoreFactory, opts page.Options, idle time.Duration, max int) *SessionService {
	return &SessionService{
		sessions: make(map[string]*Session),
		res:      res,
		stores:   stores,
		opts:     opts,
		idle:     idle,
		max:      max,
		now:      time.Now,
	}
}

// Get returns the session id refers to, creating and initializing a new one
// when id is empty or unknown. created reports whether a new session was made.
func (s *SessionService) Get(ctx context.Context, id string) (sess *Session, created bool, err error) {
	s.mutex.Lock()
	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.lastSeen = s.now()
		s.mutex.Unlock()
		return sess, false, nil
	}
	// Sessions still being created hold a slot.
	if s.max > 0 && len(s.sessions)+s.pending >= s.max {
		s.mutex.Unlock()
		return nil, false, ErrSessionLimit
	}
	s.pending++
	s.mutex.Unlock()

	sess, err = s.create(ctx)

	s.mutex.Lock()
	s.pending--
	if err == nil {
		s.sessions[sess.ID] = sess
	}
	s.mutex.Unlock()
	if err != nil {
		return nil, false, err
	}

	log.Debugf("[sessions] created session %s", sess.ID)
	return sess, true, nil
}

func (s *SessionService) create(ctx context.Context) (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	store, err := s.stores(id.String())
	if err != nil {
		return nil, fmt.Errorf("create toggle store: %w", err)
	}

	p, err := page.New(s.res, store, s.opts)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	p.Init(ctx)

	return &Session{ID: id.String(), Page: p, store: store, lastSeen: s.now()}, nil
}

// Sweep drops idle sessions and returns how many were removed.
func (s *SessionService) Sweep() int {
	if s.idle <= 0 {
		return 0
	}

	s.mutex.Lock()
	var expired []*Session
	cutoff := s.now().Add(-s.idle)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mutex.Unlock()

	for _, sess := range expired {
		if err := sess.store.Reset(); err != nil {
			log.Errorf("[sessions] reset store of %s: %v", sess.ID, err)
		}
	}
	if len(expired) > 0 {
		log.Infof("[sessions] swept %d idle sessions", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}
