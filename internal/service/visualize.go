package service

import (
	"encoding/json"
	"time"

	"github.com/imageone/agentpress/internal/domain"
)

// BuildVisualization derives nodes, edges, and the chronological trace
// from a session's event log. The derivation tolerates partial events:
// edges whose endpoints are not in the trace are dropped, and missing
// optional fields stay empty.
func BuildVisualization(events []domain.TraceEvent, sessionStart time.Time) *domain.VisualizationData {
	data := &domain.VisualizationData{
		Nodes:  []domain.Node{},
		Edges:  []domain.Edge{},
		Traces: []domain.TraceItem{},
	}

	nodeIndex := make(map[string]int)

	for _, e := range events {
		rel := e.RelativeTime(sessionStart)
		if rel > data.SessionDuration {
			data.SessionDuration = rel
		}

		payload := decodePayload(e.Payload)

		data.Traces = append(data.Traces, domain.TraceItem{
			ID:           e.EventID,
			Type:         e.Type,
			AgentName:    e.AgentName,
			Status:       e.Status,
			RelativeTime: rel,
			Extra:        payload,
		})

		switch e.Type {
		case domain.EventTypeAgentStart:
			nodeIndex[e.EventID] = len(data.Nodes)
			data.Nodes = append(data.Nodes, domain.Node{
				ID:        e.EventID,
				Type:      domain.NodeKindAgent,
				Label:     e.AgentName,
				Status:    domain.NodeStatusRunning,
				Timestamp: rel,
			})
			data.TotalAgents++

		case domain.EventTypeAgentComplete:
			nodeID := payloadString(payload, "node_id")
			if idx, ok := nodeIndex[nodeID]; ok {
				node := &data.Nodes[idx]
				node.Status = domain.NodeStatus(e.Status)
				d := rel - node.Timestamp
				if d < 0 {
					d = 0
				}
				node.Duration = &d
			}

		case domain.EventTypeToolExecution:
			nodeIndex[e.EventID] = len(data.Nodes)
			data.Nodes = append(data.Nodes, domain.Node{
				ID:        e.EventID,
				Type:      domain.NodeKindTool,
				Label:     payloadString(payload, "tool_name"),
				Status:    domain.NodeStatusCompleted,
				Timestamp: rel,
			})
			data.TotalTools++
			parentID := payloadString(payload, "parent_id")
			if _, ok := nodeIndex[parentID]; ok {
				data.Edges = append(data.Edges, domain.Edge{
					From:  parentID,
					To:    e.EventID,
					Label: "uses",
				})
			}

		case domain.EventTypeTransition:
			from := payloadString(payload, "from")
			to := payloadString(payload, "to")
			_, okFrom := nodeIndex[from]
			_, okTo := nodeIndex[to]
			if okFrom && okTo {
				data.Edges = append(data.Edges, domain.Edge{
					From:  from,
					To:    to,
					Label: "transition",
					Data:  payloadString(payload, "data"),
				})
			}
		}
	}

	return data
}

func decodePayload(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func payloadString(payload map[string]json.RawMessage, key string) string {
	raw, ok := payload[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
