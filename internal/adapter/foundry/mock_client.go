package foundry

import (
	"context"
	"fmt"
	"strings"

	"github.com/imageone/agentpress/internal/domain"
)

// MockClient is a deterministic Runner for local development and tests.
type MockClient struct{}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// RunAgent returns canned per-agent output derived from the input message.
func (m *MockClient) RunAgent(ctx context.Context, cfg AgentConfig, message string) (*AgentResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	topic := firstLineOf(message)
	switch {
	case strings.Contains(cfg.Name, "Research"):
		text := fmt.Sprintf("Research summary for %q.\n\nKey findings are covered in Mock Source A with supporting detail.", topic)
		return &AgentResult{
			Output: text,
			Citations: []domain.Citation{
				{
					Kind:        domain.CitationKindURL,
					DisplayText: "Mock Source A",
					URL:         "https://example.com/source-a",
					Title:       "Mock Source A",
				},
			},
		}, nil
	case strings.Contains(cfg.Name, "Writer"):
		return &AgentResult{
			Output: fmt.Sprintf("# Draft article\n\nBased on the research provided, here is a draft.\n\n%s", topic),
		}, nil
	case strings.Contains(cfg.Name, "Reviewer"):
		return &AgentResult{
			Output: "The draft is clear and well structured. Consider adding a concluding paragraph.",
		}, nil
	}
	return &AgentResult{Output: "ok"}, nil
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return strings.TrimSpace(s)
}
