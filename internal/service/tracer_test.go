package service

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/imageone/agentpress/internal/domain"
)

func TestTracerBuffersEvents(t *testing.T) {
	tracer := NewTracer("sess_abc")

	nodeID := tracer.AgentStart("ResearchAgent", "調査してください")
	tracer.AgentComplete(nodeID, "ResearchAgent", domain.NodeStatusCompleted, 42)
	toolID := tracer.ToolExecution(nodeID, "bing_grounding", "Tool execution: bing_grounding")
	tracer.Transition(nodeID, toolID, "Research -> Writer")

	events := tracer.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	for _, e := range events {
		if !strings.HasPrefix(e.EventID, "evt_") {
			t.Errorf("unexpected event id %q", e.EventID)
		}
		if e.SessionID != "sess_abc" {
			t.Errorf("unexpected session id %q", e.SessionID)
		}
	}
	if events[0].Type != domain.EventTypeAgentStart || events[3].Type != domain.EventTypeTransition {
		t.Errorf("unexpected event order: %s, %s", events[0].Type, events[3].Type)
	}

	var payload map[string]any
	if err := json.Unmarshal(events[1].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["node_id"] != nodeID {
		t.Errorf("agent_complete should reference the start node, got %v", payload["node_id"])
	}
}

func TestTracerTruncatesInputByRune(t *testing.T) {
	tracer := NewTracer("sess_abc")
	tracer.AgentStart("ResearchAgent", strings.Repeat("あ", 600))

	var payload map[string]string
	if err := json.Unmarshal(tracer.Events()[0].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	input := payload["input"]
	if utf8.RuneCountInString(input) != 500 {
		t.Errorf("expected 500 runes, got %d", utf8.RuneCountInString(input))
	}
	if !utf8.ValidString(input) {
		t.Error("truncation split a rune")
	}
}
