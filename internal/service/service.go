// Package service implements the session coordinator for the three-stage
// writing pipeline.
package service

import (
	"sync"

	"github.com/imageone/agentpress/internal/adapter/foundry"
	"github.com/imageone/agentpress/internal/config"
	"github.com/imageone/agentpress/internal/domain"
	store "github.com/imageone/agentpress/internal/repository"
	"github.com/imageone/agentpress/policy"
)

// TracePublisher receives trace events as they are persisted, for live
// streaming to connected clients. Implementations must not block.
type TracePublisher interface {
	Publish(sessionID string, event domain.TraceEvent)
}

// Service coordinates sessions across the store, the agent platform, and
// the stage policy.
type Service struct {
	store        store.Store
	runner       foundry.Runner
	policyEngine *policy.Engine
	publisher    TracePublisher
	config       *config.Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a new Service. publisher may be nil.
func New(st store.Store, runner foundry.Runner, policyEngine *policy.Engine, publisher TracePublisher, cfg *config.Config) *Service {
	return &Service{
		store:        st,
		runner:       runner,
		policyEngine: policyEngine,
		publisher:    publisher,
		config:       cfg,
		locks:        make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing mutations of one session.
// Operations on different session ids never contend.
func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// releaseSessionLock drops the lock entry for a session that accepts no
// further mutations. Late callers get a fresh mutex, fail the terminal
// status check, and mutate nothing.
func (s *Service) releaseSessionLock(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
}
