package diagram

import (
	"strings"
	"testing"

	"github.com/imageone/agentpress/internal/domain"
)

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(sampleData())

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Fatalf("expected flowchart header:\n%s", out)
	}
	for _, want := range []string{
		`n1["ResearchAgent (2.50s)"]`,
		`t1("bing_grounding")`,
		`n2["WriterAgent"]`,
		"n1 -->|uses| t1",
		"n1 -->|transition| n2",
		"classDef completed",
		"classDef failed",
		"classDef running",
		"class n1 completed",
		"class n2 running",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMermaidEmpty(t *testing.T) {
	out := RenderMermaid(nil)
	if !strings.Contains(out, `empty["(no visualization data)"]`) {
		t.Errorf("expected placeholder node:\n%s", out)
	}
}

func TestRenderMermaidEscaping(t *testing.T) {
	out := RenderMermaid(&domain.VisualizationData{
		Nodes: []domain.Node{{
			ID:     "evt-1.2",
			Type:   domain.NodeKindAgent,
			Label:  "say \"hi\"\nplease",
			Status: domain.NodeStatusFailed,
		}},
	})

	if !strings.Contains(out, "evt_1_2[") {
		t.Errorf("expected sanitized id:\n%s", out)
	}
	if strings.Contains(out, "\"hi\"") {
		t.Errorf("quotes should be escaped:\n%s", out)
	}
	if !strings.Contains(out, "#quot;hi#quot; please") {
		t.Errorf("expected escaped label:\n%s", out)
	}
	if !strings.Contains(out, "class evt_1_2 failed") {
		t.Errorf("expected failed class:\n%s", out)
	}
}
