package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func TestDefaultPolicyAllowsGroundingInResearch(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), map[string]any{
		"stage":     "research",
		"tool_type": "bing_grounding",
		"iteration": 0,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision != DecisionAllow {
		t.Errorf("expected allow, got %s", decision)
	}
}

func TestDefaultPolicyDeniesGroundingElsewhere(t *testing.T) {
	engine := newTestEngine(t)

	for _, stage := range []string{"write", "review"} {
		decision, err := engine.Evaluate(context.Background(), map[string]any{
			"stage":     stage,
			"tool_type": "bing_grounding",
			"iteration": 1,
		})
		if err != nil {
			t.Fatalf("evaluate for %s: %v", stage, err)
		}
		if decision != DecisionDeny {
			t.Errorf("expected deny for stage %s, got %s", stage, decision)
		}
	}
}

func TestDefaultPolicyDeniesUnknownTool(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), map[string]any{
		"stage":     "research",
		"tool_type": "code_interpreter",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision != DecisionDeny {
		t.Errorf("expected deny, got %s", decision)
	}
}

func TestNewEngineRejectsBadPolicy(t *testing.T) {
	if _, err := NewEngine(context.Background(), "package stage_policy\n\ndecision := {"); err == nil {
		t.Error("expected error for malformed policy")
	}
}
