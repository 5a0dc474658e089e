package service

import (
	"context"
	"fmt"
	"log"

	"github.com/imageone/agentpress/internal/adapter/foundry"
	"github.com/imageone/agentpress/internal/domain"
	"github.com/imageone/agentpress/policy"
)

const toolTypeBingGrounding = "bing_grounding"

// agentNameFor maps a content stage to its agent.
func agentNameFor(stage domain.Stage) string {
	switch stage {
	case domain.StageResearch:
		return "ResearchAgent"
	case domain.StageWrite:
		return "WriterAgent"
	case domain.StageReview:
		return "ReviewerAgent"
	}
	return ""
}

func tasteInstruction(taste domain.Taste) string {
	switch taste {
	case domain.TasteAdvertisement:
		return "広告コピーのように、読者の興味を引く訴求力のある文体で書いてください。"
	case domain.TasteProposal:
		return "提案書のように、課題と解決策を明確に示す構成で書いてください。"
	case domain.TasteAcademic:
		return "論文のように、客観的な根拠を示しながら論理的な文体で書いてください。"
	default:
		return "Web記事のように、見出しと段落を適切に使った読みやすい文体で書いてください。"
	}
}

// stageAgentConfig builds the agent definition and the user message for
// one stage execution. feedback, when non-empty, is appended as an extra
// instruction for the re-run.
func (s *Service) stageAgentConfig(sess *domain.Session, stage domain.Stage, feedback string) (foundry.AgentConfig, string) {
	cfg := foundry.AgentConfig{
		Model: s.config.ModelDeploymentName,
		Name:  agentNameFor(stage),
	}
	var message string

	switch stage {
	case domain.StageResearch:
		cfg.Instructions = "あなたは優秀なリサーチャーです。ユーザーのトピックについて最新情報をBing検索で調査し、要点をわかりやすくまとめてください。"
		cfg.Tools = []foundry.ToolConfig{{Type: toolTypeBingGrounding}}
		message = fmt.Sprintf("以下のトピックについて調査してください: %s", sess.Topic)
	case domain.StageWrite:
		cfg.Instructions = "あなたは優秀なライターです。提供されたリサーチ結果を元に、読みやすく魅力的な記事を執筆してください。" + tasteInstruction(sess.Taste)
		message = fmt.Sprintf("以下のリサーチ結果を元に、魅力的な記事を書いてください:\n\n%s", sess.Research)
	case domain.StageReview:
		cfg.Instructions = "あなたは経験豊富なエディターです。提供された記事を丁寧にレビューし、内容の正確性、読みやすさ、構成のバランスなどを評価してください。改善提案も含めて具体的なフィードバックを提供してください。"
		message = fmt.Sprintf("以下の記事をレビューしてください:\n\n%s", sess.Article)
	}

	if feedback != "" {
		message += fmt.Sprintf("\n\n前回の出力に対する追加の指示: %s", feedback)
	}
	return cfg, message
}

// runStage executes one agent stage, records its trace, and writes its
// output into the session. The session and trace are only persisted by the
// caller after this returns successfully; a failure leaves no state
// behind. Returns the agent node id.
func (s *Service) runStage(ctx context.Context, sess *domain.Session, stage domain.Stage, feedback string, tracer *Tracer) (string, error) {
	cfg, message := s.stageAgentConfig(sess, stage, feedback)
	cfg.Tools = s.filterTools(ctx, sess, stage, cfg.Tools, tracer)

	runCtx, cancel := context.WithTimeout(ctx, s.config.AgentTimeout)
	defer cancel()

	nodeID := tracer.AgentStart(cfg.Name, message)
	result, err := s.runner.RunAgent(runCtx, cfg, message)
	if err != nil {
		log.Printf("ERROR: stage %s agent call failed: %v", stage, err)
		return "", &domain.ExternalServiceError{Stage: stage, Cause: err}
	}

	tracer.AgentComplete(nodeID, cfg.Name, domain.NodeStatusCompleted, len(result.Output))
	for _, tool := range cfg.Tools {
		tracer.ToolExecution(nodeID, tool.Type, "Tool execution: "+tool.Type)
	}

	switch stage {
	case domain.StageResearch:
		sess.Research = result.Output
		sess.ResearchCitations = result.Citations
	case domain.StageWrite:
		sess.Article = result.Output
	case domain.StageReview:
		sess.Review = result.Output
	}
	return nodeID, nil
}

// filterTools applies the stage policy to the agent's tool list. Denied
// tools are dropped rather than failing the stage; every decision is
// recorded in the trace.
func (s *Service) filterTools(ctx context.Context, sess *domain.Session, stage domain.Stage, tools []foundry.ToolConfig, tracer *Tracer) []foundry.ToolConfig {
	if s.policyEngine == nil || len(tools) == 0 {
		return tools
	}
	var allowed []foundry.ToolConfig
	for _, tool := range tools {
		decision, err := s.policyEngine.Evaluate(ctx, map[string]any{
			"stage":     string(stage),
			"tool_type": tool.Type,
			"iteration": sess.Iteration,
		})
		if err != nil {
			log.Printf("WARN: policy evaluation failed for tool %s: %v", tool.Type, err)
			decision = policy.DecisionDeny
		}
		tracer.PolicyDecision(stage, tool.Type, decision)
		if decision == policy.DecisionAllow {
			allowed = append(allowed, tool)
		}
	}
	return allowed
}
