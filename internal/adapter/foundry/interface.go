package foundry

import "context"

// Runner defines the single operation the pipeline needs from the agent
// platform: create an agent from config, send it one message, and return
// the assistant's reply with any citations.
type Runner interface {
	RunAgent(ctx context.Context, cfg AgentConfig, message string) (*AgentResult, error)
}

// Ensure both implementations satisfy Runner.
var (
	_ Runner = (*Client)(nil)
	_ Runner = (*MockClient)(nil)
)
