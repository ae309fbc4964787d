package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

type SessionEventKind int

const (
	SignedIn SessionEventKind = iota
	SignedOut
)

type SessionEvent struct {
	Kind    SessionEventKind
	Session domain.Session
}

// Sessions holds the session of the running client and notifies listeners when it changes.
type Sessions struct {
	auth   port.Authenticator
	logger *zap.Logger

	mu        sync.Mutex
	current   domain.Session
	listeners map[int]func(SessionEvent)
	nextID    int
}

func NewSessions(auth port.Authenticator, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sessions{
		auth:      auth,
		logger:    logger,
		listeners: make(map[int]func(SessionEvent)),
	}
}

// SignIn verifies token, or creates an anonymous user when token is empty,
// and replaces the current session.
func (s *Sessions) SignIn(ctx context.Context, token string) (domain.Session, error) {
	var (
		session domain.Session
		err     error
	)

	if strings.TrimSpace(token) == "" {
		session, err = s.auth.CreateAnonymous(ctx)
		if err != nil {
			return domain.Session{}, fmt.Errorf("auth.CreateAnonymous: %w", err)
		}
	} else {
		session, err = s.auth.VerifyToken(ctx, token)
		if err != nil {
			return domain.Session{}, fmt.Errorf("auth.VerifyToken: %w", err)
		}
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.logger.Info("signed in",
		zap.String("user_id", session.UserID),
		zap.Bool("anonymous", session.Anonymous))

	s.notify(SessionEvent{Kind: SignedIn, Session: session})

	return session, nil
}

// SignOut drops the current session. It is a no-op without one.
func (s *Sessions) SignOut() {
	s.mu.Lock()
	prev := s.current
	s.current = domain.Session{}
	s.mu.Unlock()

	if !prev.Valid() {
		return
	}

	s.logger.Info("signed out", zap.String("user_id", prev.UserID))
	s.notify(SessionEvent{Kind: SignedOut, Session: prev})
}

func (s *Sessions) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// OnChange registers fn for session events and returns a function that unregisters it.
func (s *Sessions) OnChange(fn func(SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Sessions) notify(ev SessionEvent) {
	s.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
