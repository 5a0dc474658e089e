package domain

import (
	"encoding/json"
	"time"
)

// TraceEvent is the persisted form of one trace entry. Ts is absolute unix
// milliseconds; relative times are computed against the session's creation
// time when the trace is served. Payload is an open bag so trace producers
// can add fields without a schema change.
type TraceEvent struct {
	EventID   string          `json:"event_id"`
	SessionID string          `json:"session_id"`
	Ts        int64           `json:"ts"`
	Type      EventType       `json:"type"`
	AgentName string          `json:"agent_name,omitempty"`
	Status    string          `json:"status,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// RelativeTime returns the event time in seconds since start.
func (e *TraceEvent) RelativeTime(start time.Time) float64 {
	return float64(e.Ts-start.UnixMilli()) / 1000.0
}

// TraceItem is one chronological entry of the visualization trace. Known
// fields are typed; any other keys a producer emitted are preserved in
// Extra and survive a decode/encode round trip.
type TraceItem struct {
	ID           string    `json:"-"`
	Type         EventType `json:"-"`
	AgentName    string    `json:"-"`
	Status       string    `json:"-"`
	RelativeTime float64   `json:"-"`
	Extra        map[string]json.RawMessage
}

var traceItemKnownKeys = map[string]bool{
	"id": true, "type": true, "agent_name": true, "status": true, "relative_time": true,
}

// MarshalJSON flattens known fields and Extra into a single object.
func (t TraceItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Extra)+5)
	for k, v := range t.Extra {
		if !traceItemKnownKeys[k] {
			out[k] = v
		}
	}
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	if err := put("id", t.ID); err != nil {
		return nil, err
	}
	if err := put("type", t.Type); err != nil {
		return nil, err
	}
	if err := put("relative_time", t.RelativeTime); err != nil {
		return nil, err
	}
	if t.AgentName != "" {
		if err := put("agent_name", t.AgentName); err != nil {
			return nil, err
		}
	}
	if t.Status != "" {
		if err := put("status", t.Status); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits known fields out of the object and keeps the rest
// in Extra.
func (t *TraceItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &t.ID); err != nil {
			return err
		}
	}
	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &t.Type); err != nil {
			return err
		}
	}
	if v, ok := raw["agent_name"]; ok {
		if err := json.Unmarshal(v, &t.AgentName); err != nil {
			return err
		}
	}
	if v, ok := raw["status"]; ok {
		if err := json.Unmarshal(v, &t.Status); err != nil {
			return err
		}
	}
	if v, ok := raw["relative_time"]; ok {
		if err := json.Unmarshal(v, &t.RelativeTime); err != nil {
			return err
		}
	}
	for k, v := range raw {
		if traceItemKnownKeys[k] {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[k] = v
	}
	return nil
}

// Node is a visualization node derived from the trace. Timestamp is
// seconds since session start.
type Node struct {
	ID        string     `json:"id"`
	Type      NodeKind   `json:"type"`
	Label     string     `json:"label"`
	Status    NodeStatus `json:"status"`
	Timestamp float64    `json:"timestamp"`
	Duration  *float64   `json:"duration,omitempty"`
}

// Edge is a directed connection between two trace nodes. Both endpoints
// reference node ids present in the same trace.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
	Data  string `json:"data,omitempty"`
}

// VisualizationData is the full structure consumed by the run visualizer.
type VisualizationData struct {
	Nodes           []Node      `json:"nodes"`
	Edges           []Edge      `json:"edges"`
	Traces          []TraceItem `json:"traces"`
	SessionDuration float64     `json:"session_duration"`
	TotalAgents     int         `json:"total_agents"`
	TotalTools      int         `json:"total_tools"`
}
