// Package domain defines the core domain models for the writing pipeline.
package domain

// Stage represents a content-generation phase of a session.
type Stage string

const (
	StageResearch  Stage = "research"
	StageWrite     Stage = "write"
	StageReview    Stage = "review"
	StageCompleted Stage = "completed"
)

// NextStage returns the stage that follows s, or StageCompleted if s is
// already the last content stage.
func NextStage(s Stage) Stage {
	switch s {
	case StageResearch:
		return StageWrite
	case StageWrite:
		return StageReview
	default:
		return StageCompleted
	}
}

// SessionStatus represents the approval status of a session.
type SessionStatus string

const (
	SessionStatusPendingApproval      SessionStatus = "pending_approval"
	SessionStatusApproved             SessionStatus = "approved"
	SessionStatusMaxIterationsReached SessionStatus = "max_iterations_reached"
)

// IsTerminal reports whether the status permits no further mutation.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusApproved || s == SessionStatusMaxIterationsReached
}

// Taste is the tone selector applied to generated content.
type Taste string

const (
	TasteAdvertisement Taste = "広告風"
	TasteProposal      Taste = "提案書風"
	TasteWebArticle    Taste = "Web記事風"
	TasteAcademic      Taste = "論文風"
)

// DefaultTaste is applied when a request omits the taste field.
const DefaultTaste = TasteWebArticle

// ValidTaste reports whether t is one of the enumerated styles.
func ValidTaste(t Taste) bool {
	switch t {
	case TasteAdvertisement, TasteProposal, TasteWebArticle, TasteAcademic:
		return true
	}
	return false
}

// EventType represents the type of a trace event.
type EventType string

const (
	EventTypeAgentStart     EventType = "agent_start"
	EventTypeAgentComplete  EventType = "agent_complete"
	EventTypeToolExecution  EventType = "tool_execution"
	EventTypeTransition     EventType = "transition"
	EventTypePolicyDecision EventType = "policy_decision"
)

// NodeKind classifies a visualization node.
type NodeKind string

const (
	NodeKindAgent NodeKind = "agent"
	NodeKindTool  NodeKind = "tool"
)

// NodeStatus represents the runtime state of a visualization node.
type NodeStatus string

const (
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusFailed    NodeStatus = "failed"
)

// CitationKind classifies a citation source.
type CitationKind string

const (
	CitationKindURL  CitationKind = "url"
	CitationKindFile CitationKind = "file"
)
