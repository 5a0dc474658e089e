// Package foundry provides the client for the hosted agent platform.
package foundry

import "github.com/imageone/agentpress/internal/domain"

// AgentConfig describes the agent to create for a single stage run.
type AgentConfig struct {
	Model        string       `json:"model"`
	Name         string       `json:"name"`
	Instructions string       `json:"instructions"`
	Tools        []ToolConfig `json:"tools,omitempty"`
}

// ToolConfig is a tool attached to an agent.
type ToolConfig struct {
	Type string `json:"type"`
}

// AgentResult is the outcome of one agent run.
type AgentResult struct {
	Output    string
	Citations []domain.Citation
}

// Wire types for the agents REST API.

type createAgentResponse struct {
	ID string `json:"id"`
}

type createThreadResponse struct {
	ID string `json:"id"`
}

type createMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type createRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

type runResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	LastError *runError `json:"last_error,omitempty"`
}

type runError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listMessagesResponse struct {
	Data []messageItem `json:"data"`
}

type messageItem struct {
	Role    string           `json:"role"`
	Content []messageContent `json:"content"`
}

type messageContent struct {
	Type string       `json:"type"`
	Text *messageText `json:"text,omitempty"`
}

type messageText struct {
	Value       string       `json:"value"`
	Annotations []annotation `json:"annotations,omitempty"`
}

type annotation struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	URLCitation *urlCitation `json:"url_citation,omitempty"`
	FileID      string       `json:"file_id,omitempty"`
}

type urlCitation struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type errorResponse struct {
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
