package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imageone/agentpress/internal/domain"
)

// SubmitFeedback advances a session on approval or re-runs the current
// stage with the supplied feedback. Mutations on one session are
// serialized; the store is only written after any agent call succeeds.
func (s *Service) SubmitFeedback(ctx context.Context, req domain.FeedbackRequest) (*domain.SessionView, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, &domain.ValidationError{Field: "session_id", Message: "session_id must not be empty"}
	}

	lock := s.sessionLock(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &domain.NotFoundError{SessionID: req.SessionID}
	}
	if sess.Status.IsTerminal() {
		return nil, &domain.InvalidStateError{SessionID: sess.SessionID, Status: sess.Status}
	}

	tracer := NewTracer(sess.SessionID)
	if req.Approved {
		err = s.advance(ctx, sess, tracer)
	} else {
		err = s.retry(ctx, sess, strings.TrimSpace(req.Feedback), tracer)
	}
	if err != nil {
		return nil, err
	}

	sess.UpdatedAt = time.Now()
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}
	s.persistTrace(ctx, tracer.Events())

	if sess.Status.IsTerminal() {
		s.releaseSessionLock(sess.SessionID)
	}
	return s.buildView(ctx, sess)
}

// advance moves the session to the next stage, running the agent for the
// stage being entered. Reaching completed marks the session approved.
func (s *Service) advance(ctx context.Context, sess *domain.Session, tracer *Tracer) error {
	next := domain.NextStage(sess.Stage)
	if next == domain.StageCompleted {
		sess.Stage = domain.StageCompleted
		sess.Status = domain.SessionStatusApproved
		return nil
	}

	prevStage := sess.Stage
	nodeID, err := s.runStage(ctx, sess, next, "", tracer)
	if err != nil {
		return err
	}

	if prevNodeID := s.lastAgentNodeID(ctx, sess.SessionID, prevStage); prevNodeID != "" {
		tracer.Transition(prevNodeID, nodeID, transitionLabel(prevStage, next))
	}

	sess.Stage = next
	sess.Status = domain.SessionStatusPendingApproval
	return nil
}

// retry re-runs the current stage with feedback, or closes the session
// when the iteration budget is exhausted.
func (s *Service) retry(ctx context.Context, sess *domain.Session, feedback string, tracer *Tracer) error {
	if feedback == "" {
		return &domain.ValidationError{Field: "feedback", Message: "feedback must not be empty when not approved"}
	}

	if sess.Iteration >= sess.MaxIterations {
		sess.Status = domain.SessionStatusMaxIterationsReached
		return nil
	}

	if _, err := s.runStage(ctx, sess, sess.Stage, feedback, tracer); err != nil {
		return err
	}
	sess.Iteration++
	sess.Status = domain.SessionStatusPendingApproval
	return nil
}

// lastAgentNodeID finds the most recent agent node recorded for a stage's
// agent, used to connect consecutive stages in the diagram.
func (s *Service) lastAgentNodeID(ctx context.Context, sessionID string, stage domain.Stage) string {
	events, err := s.store.GetTraceEvents(ctx, sessionID)
	if err != nil {
		return ""
	}
	agentName := agentNameFor(stage)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == domain.EventTypeAgentStart && events[i].AgentName == agentName {
			return events[i].EventID
		}
	}
	return ""
}

func transitionLabel(from, to domain.Stage) string {
	names := map[domain.Stage]string{
		domain.StageResearch: "Research",
		domain.StageWrite:    "Writer",
		domain.StageReview:   "Reviewer",
	}
	return fmt.Sprintf("%s -> %s", names[from], names[to])
}
