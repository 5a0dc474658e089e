package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imageone/agentpress/internal/domain"
)

// StartSession creates a new session and runs the research stage. The
// session and its trace are persisted only after the agent call succeeds.
func (s *Service) StartSession(ctx context.Context, req domain.ProcessRequest) (*domain.SessionView, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, &domain.ValidationError{Field: "topic", Message: "topic must not be empty"}
	}
	taste := req.Taste
	if taste == "" {
		taste = domain.DefaultTaste
	}
	if !domain.ValidTaste(taste) {
		return nil, &domain.ValidationError{Field: "taste", Message: "unknown taste value"}
	}

	now := time.Now()
	sess := &domain.Session{
		SessionID:     "sess_" + uuid.New().String()[:8],
		Topic:         topic,
		Taste:         taste,
		Stage:         domain.StageResearch,
		Status:        domain.SessionStatusPendingApproval,
		Iteration:     1,
		MaxIterations: s.config.MaxIterations,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tracer := NewTracer(sess.SessionID)
	if _, err := s.runStage(ctx, sess, domain.StageResearch, "", tracer); err != nil {
		return nil, err
	}

	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	s.persistTrace(ctx, tracer.Events())

	return s.buildView(ctx, sess)
}

// GetSession returns the current view of a session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &domain.NotFoundError{SessionID: sessionID}
	}
	return s.buildView(ctx, sess)
}

// persistTrace stores buffered trace events and fans them out to live
// subscribers. Storage failures are logged, not returned: the session
// mutation already succeeded and the trace is advisory.
func (s *Service) persistTrace(ctx context.Context, events []domain.TraceEvent) {
	for _, e := range events {
		if err := s.store.CreateTraceEvent(ctx, &e); err != nil {
			log.Printf("ERROR: failed to persist trace event %s: %v", e.EventID, err)
			continue
		}
		if s.publisher != nil {
			s.publisher.Publish(e.SessionID, e)
		}
	}
}
