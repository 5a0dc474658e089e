package foundry

import (
	"log"
	"os"
	"time"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "AGENTPRESS_MODE"
	// ModeMock indicates the mock runner should be used.
	ModeMock = "MOCK"
)

// NewRunner creates a Runner based on the AGENTPRESS_MODE environment
// variable. If AGENTPRESS_MODE=MOCK, returns a MockClient; otherwise
// returns a real platform client.
func NewRunner(endpoint, apiKey string, timeout time.Duration) Runner {
	if os.Getenv(EnvMode) == ModeMock {
		log.Println("AGENTPRESS_MODE=MOCK detected, using mock agent runner")
		return NewMockClient()
	}
	return NewClient(endpoint, apiKey, timeout)
}
