// Package diagram renders a session's visualization trace as a vertical
// node diagram plus a chronological trace list.
package diagram

import (
	"fmt"
	"strings"

	"github.com/imageone/agentpress/internal/domain"
)

const (
	boxWidth = 40
	// Placeholder shown when no visualization data is present.
	emptyPlaceholder = "(no visualization data)"
)

// statusTag returns a short ASCII indicator for a node status.
func statusTag(status domain.NodeStatus) string {
	switch status {
	case domain.NodeStatusCompleted:
		return "[OK]"
	case domain.NodeStatusFailed:
		return "[FAIL]"
	case domain.NodeStatusRunning:
		return "[RUN]"
	default:
		return ""
	}
}

// RenderASCII renders the visualization as a text diagram: one box per
// node in emission order, a connector between consecutive nodes joined by
// an edge, remaining edges and the trace list below. Partial data never
// fails; missing optional fields are simply omitted.
func RenderASCII(data *domain.VisualizationData) string {
	if data == nil || (len(data.Nodes) == 0 && len(data.Traces) == 0) {
		return emptyPlaceholder + "\n"
	}

	var b strings.Builder

	drawn := make(map[int]bool)
	for i, node := range data.Nodes {
		writeBox(&b, node)
		if i == len(data.Nodes)-1 {
			continue
		}
		if idx, label, ok := edgeBetween(data.Edges, node.ID, data.Nodes[i+1].ID); ok {
			drawn[idx] = true
			writeConnector(&b, label)
		} else {
			b.WriteString("\n")
		}
	}

	// Edges that do not connect adjacent boxes are listed instead of drawn.
	var rest []string
	for i, e := range data.Edges {
		if drawn[i] {
			continue
		}
		line := fmt.Sprintf("  %s -> %s", e.From, e.To)
		if e.Label != "" {
			line += " (" + e.Label + ")"
		}
		rest = append(rest, line)
	}
	if len(rest) > 0 {
		b.WriteString("\nOther edges:\n")
		b.WriteString(strings.Join(rest, "\n"))
		b.WriteString("\n")
	}

	if len(data.Traces) > 0 {
		b.WriteString("\nTrace:\n")
		for _, t := range data.Traces {
			b.WriteString(traceLine(t))
		}
	}

	if data.SessionDuration > 0 {
		b.WriteString(fmt.Sprintf("\n%d agents, %d tools in %.2fs\n",
			data.TotalAgents, data.TotalTools, data.SessionDuration))
	}

	return b.String()
}

// writeBox writes one fixed-width node box.
func writeBox(b *strings.Builder, node domain.Node) {
	border := "+" + strings.Repeat("-", boxWidth-2) + "+"

	title := node.Label
	if title == "" {
		title = node.ID
	}
	tag := statusTag(node.Status)
	sub := string(node.Type)
	if node.Duration != nil {
		sub += fmt.Sprintf("  %.2fs", *node.Duration)
	}

	b.WriteString(border + "\n")
	b.WriteString(boxLine(title, tag))
	b.WriteString(boxLine(sub, ""))
	b.WriteString(border + "\n")
}

func boxLine(left, right string) string {
	inner := boxWidth - 4
	pad := inner - len([]rune(left)) - len(right)
	if pad < 1 {
		left = string([]rune(left)[:max(0, inner-len(right)-1)])
		pad = 1
	}
	return "| " + left + strings.Repeat(" ", pad) + right + " |\n"
}

func writeConnector(b *strings.Builder, label string) {
	mid := strings.Repeat(" ", boxWidth/2)
	b.WriteString(mid + "|\n")
	if label != "" {
		b.WriteString(mid + "| " + label + "\n")
	}
	b.WriteString(mid + "v\n")
}

// edgeBetween finds an edge from -> to, returning its index and label.
func edgeBetween(edges []domain.Edge, from, to string) (int, string, bool) {
	for i, e := range edges {
		if e.From == from && e.To == to {
			return i, e.Label, true
		}
	}
	return 0, "", false
}

func traceLine(t domain.TraceItem) string {
	line := fmt.Sprintf("  [%7.2fs] %-15s", t.RelativeTime, string(t.Type))
	if t.AgentName != "" {
		line += " " + t.AgentName
	}
	if t.Status != "" {
		line += " (" + t.Status + ")"
	}
	return line + "\n"
}
