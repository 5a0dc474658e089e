package service

import (
	"context"
	"fmt"
	"log"

	"github.com/imageone/agentpress/internal/citations"
	"github.com/imageone/agentpress/internal/domain"
)

// buildView assembles the response view of a session, with the research
// text linked against its citations and the trace rendered into
// visualization data.
func (s *Service) buildView(ctx context.Context, sess *domain.Session) (*domain.SessionView, error) {
	research := citations.Link(sess.Research, sess.ResearchCitations)
	research = citations.AppendUnlinked(research, sess.ResearchCitations)

	view := &domain.SessionView{
		SessionID:         sess.SessionID,
		Status:            sess.Status,
		Stage:             sess.Stage,
		Iteration:         sess.Iteration,
		MaxIterations:     sess.MaxIterations,
		Message:           statusMessage(sess),
		Topic:             sess.Topic,
		Taste:             sess.Taste,
		Research:          research,
		ResearchCitations: sess.ResearchCitations,
		Article:           sess.Article,
		Review:            sess.Review,
	}

	events, err := s.store.GetTraceEvents(ctx, sess.SessionID)
	if err != nil {
		// The view is still useful without the trace.
		log.Printf("WARN: failed to load trace for session %s: %v", sess.SessionID, err)
		return view, nil
	}
	if len(events) > 0 {
		view.Visualization = BuildVisualization(events, sess.CreatedAt)
	}
	return view, nil
}

func statusMessage(sess *domain.Session) string {
	switch sess.Status {
	case domain.SessionStatusApproved:
		return "All stages approved. The session is complete."
	case domain.SessionStatusMaxIterationsReached:
		return fmt.Sprintf("Maximum iterations (%d) reached. The session is closed.", sess.MaxIterations)
	default:
		return fmt.Sprintf("Stage %q finished. Approve to continue or send feedback to retry.", sess.Stage)
	}
}
