package store

import (
	"context"

	"github.com/imageone/agentpress/internal/domain"
)

// Store abstracts session and trace persistence.
type Store interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSession(ctx context.Context, s *domain.Session) error

	CreateTraceEvent(ctx context.Context, e *domain.TraceEvent) error
	GetTraceEvents(ctx context.Context, sessionID string) ([]domain.TraceEvent, error)

	Close() error
}
