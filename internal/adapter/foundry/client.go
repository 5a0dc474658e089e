package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imageone/agentpress/internal/domain"
)

const apiVersion = "2025-05-01"

// Client talks to the agents REST API of the cloud platform.
type Client struct {
	endpoint     string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewClient creates a new platform client.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		pollInterval: time.Second,
	}
}

// RunAgent creates a throwaway agent, runs one message through it on a
// fresh thread, and returns the assistant reply. The run is polled until
// it reaches a terminal status or ctx expires.
func (c *Client) RunAgent(ctx context.Context, cfg AgentConfig, message string) (*AgentResult, error) {
	var agent createAgentResponse
	if err := c.post(ctx, "/assistants", cfg, &agent); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	var thread createThreadResponse
	if err := c.post(ctx, "/threads", struct{}{}, &thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	msg := createMessageRequest{Role: "user", Content: message}
	if err := c.post(ctx, "/threads/"+thread.ID+"/messages", msg, nil); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	var run runResponse
	if err := c.post(ctx, "/threads/"+thread.ID+"/runs", createRunRequest{AssistantID: agent.ID}, &run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	run, err := c.pollRun(ctx, thread.ID, run.ID)
	if err != nil {
		return nil, err
	}
	if run.Status != "completed" {
		if run.LastError != nil {
			return nil, fmt.Errorf("agent run ended with status %s: %s (%s)", run.Status, run.LastError.Message, run.LastError.Code)
		}
		return nil, fmt.Errorf("agent run ended with status %s", run.Status)
	}

	var messages listMessagesResponse
	if err := c.get(ctx, "/threads/"+thread.ID+"/messages", &messages); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return extractResult(messages), nil
}

// pollRun polls the run until it leaves the in-progress states.
func (c *Client) pollRun(ctx context.Context, threadID, runID string) (runResponse, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var run runResponse
		if err := c.get(ctx, "/threads/"+threadID+"/runs/"+runID, &run); err != nil {
			return run, fmt.Errorf("failed to poll run: %w", err)
		}
		switch run.Status {
		case "queued", "in_progress", "requires_action":
		default:
			return run, nil
		}

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-ticker.C:
		}
	}
}

// extractResult pulls the first assistant text plus its citations.
func extractResult(messages listMessagesResponse) *AgentResult {
	result := &AgentResult{}
	for _, m := range messages.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, content := range m.Content {
			if content.Type != "text" || content.Text == nil {
				continue
			}
			result.Output = content.Text.Value
			for _, a := range content.Text.Annotations {
				switch a.Type {
				case "url_citation":
					if a.URLCitation == nil {
						continue
					}
					result.Citations = append(result.Citations, domain.Citation{
						Kind:        domain.CitationKindURL,
						DisplayText: a.Text,
						URL:         a.URLCitation.URL,
						Title:       a.URLCitation.Title,
					})
				case "file_citation":
					result.Citations = append(result.Citations, domain.Citation{
						Kind:        domain.CitationKindFile,
						DisplayText: a.Text,
						FileID:      a.FileID,
					})
				}
			}
			return result
		}
	}
	return result
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(raw), out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	url := c.endpoint + path + "?api-version=" + apiVersion
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return fmt.Errorf("platform API error [%d]: %s (code: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Code)
		}
		return fmt.Errorf("platform API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
