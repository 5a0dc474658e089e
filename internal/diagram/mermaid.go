package diagram

import (
	"fmt"
	"strings"

	"github.com/imageone/agentpress/internal/domain"
)

// RenderMermaid renders the visualization as a Mermaid flowchart string.
// Node fill color follows status: completed green, failed red, running
// blue.
func RenderMermaid(data *domain.VisualizationData) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	if data == nil || len(data.Nodes) == 0 {
		b.WriteString("    empty[\"" + emptyPlaceholder + "\"]\n")
		return b.String()
	}

	for _, node := range data.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node)))
	}

	for _, edge := range data.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n",
			mermaidSafeID(edge.From), label, mermaidSafeID(edge.To)))
	}

	b.WriteString("\n")
	b.WriteString("    classDef completed fill:#2d6a2d,stroke:#1a4a1a,color:#fff\n")
	b.WriteString("    classDef failed fill:#8b1a1a,stroke:#5c0e0e,color:#fff\n")
	b.WriteString("    classDef running fill:#1a5276,stroke:#0e3a52,color:#fff\n")

	for _, node := range data.Nodes {
		cls := mermaidStatusClass(node.Status)
		if cls != "" {
			b.WriteString(fmt.Sprintf("    class %s %s\n", mermaidSafeID(node.ID), cls))
		}
	}

	return b.String()
}

// mermaidNodeDef returns a node definition; agents are rectangles, tools
// are rounded boxes.
func mermaidNodeDef(node domain.Node) string {
	id := mermaidSafeID(node.ID)
	label := mermaidEscapeLabel(node.Label)
	if label == "" {
		label = id
	}
	if node.Duration != nil {
		label += fmt.Sprintf(" (%.2fs)", *node.Duration)
	}

	if node.Type == domain.NodeKindTool {
		return fmt.Sprintf("%s(\"%s\")", id, label)
	}
	return fmt.Sprintf("%s[\"%s\"]", id, label)
}

func mermaidStatusClass(status domain.NodeStatus) string {
	switch status {
	case domain.NodeStatusCompleted, domain.NodeStatusFailed, domain.NodeStatusRunning:
		return string(status)
	}
	return ""
}

// mermaidSafeID makes a node id safe for Mermaid syntax.
func mermaidSafeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func mermaidEscapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\"", "#quot;")
	label = strings.ReplaceAll(label, "\n", " ")
	return label
}
