package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/imageone/agentpress/internal/domain"
)

// Tracer buffers trace events for one stage execution. Events are only
// persisted after the external agent call succeeds, so a failed stage
// leaves no partial trace behind.
type Tracer struct {
	sessionID string
	events    []domain.TraceEvent
}

// NewTracer creates a tracer for the given session.
func NewTracer(sessionID string) *Tracer {
	return &Tracer{sessionID: sessionID}
}

func (t *Tracer) record(eventType domain.EventType, agentName, status string, payload map[string]any) string {
	eventID := "evt_" + uuid.New().String()[:8]
	var raw json.RawMessage
	if len(payload) > 0 {
		raw, _ = json.Marshal(payload)
	}
	t.events = append(t.events, domain.TraceEvent{
		EventID:   eventID,
		SessionID: t.sessionID,
		Ts:        time.Now().UnixMilli(),
		Type:      eventType,
		AgentName: agentName,
		Status:    status,
		Payload:   raw,
	})
	return eventID
}

// AgentStart records an agent invocation and returns its node id.
func (t *Tracer) AgentStart(agentName, input string) string {
	return t.record(domain.EventTypeAgentStart, agentName, string(domain.NodeStatusRunning), map[string]any{
		"input": truncate(input, 500),
	})
}

// AgentComplete finalizes an agent node started with AgentStart.
func (t *Tracer) AgentComplete(nodeID, agentName string, status domain.NodeStatus, outputChars int) {
	t.record(domain.EventTypeAgentComplete, agentName, string(status), map[string]any{
		"node_id":      nodeID,
		"output_chars": outputChars,
	})
}

// ToolExecution records a tool run under a parent agent node and returns
// the tool node id.
func (t *Tracer) ToolExecution(parentID, toolName, detail string) string {
	return t.record(domain.EventTypeToolExecution, "", string(domain.NodeStatusCompleted), map[string]any{
		"parent_id": parentID,
		"tool_name": toolName,
		"detail":    detail,
	})
}

// Transition records a hand-off edge between two agent nodes.
func (t *Tracer) Transition(fromID, toID, label string) {
	t.record(domain.EventTypeTransition, "", "", map[string]any{
		"from": fromID,
		"to":   toID,
		"data": label,
	})
}

// PolicyDecision records the outcome of a stage tool policy check.
func (t *Tracer) PolicyDecision(stage domain.Stage, toolType, decision string) {
	t.record(domain.EventTypePolicyDecision, "", "", map[string]any{
		"stage":     string(stage),
		"tool_type": toolType,
		"decision":  decision,
	})
}

// Events returns the buffered events in emission order.
func (t *Tracer) Events() []domain.TraceEvent {
	return t.events
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
