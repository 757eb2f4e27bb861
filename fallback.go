package reasoner

import (
	"context"
	"fmt"
	"strings"

	"github.com/mudler/reasoner/prompt"
	"github.com/mudler/xlog"
)

type FallbackRequest struct {
	Context  []ReasoningStep
	Question string
}

// FallbackAnswerer produces a final answer without tools. It is called at
// most once per escalation and its answer is final.
type FallbackAnswerer interface {
	Answer(ctx context.Context, req FallbackRequest) (string, error)
}

type LLMFallback struct {
	llm     LLM
	prompts prompt.PromptMap
}

func NewLLMFallback(llm LLM, opts ...Option) *LLMFallback {
	o := defaultOptions()
	o.Apply(opts...)

	return &LLMFallback{llm: llm, prompts: o.prompts}
}

func (f *LLMFallback) Answer(ctx context.Context, req FallbackRequest) (string, error) {
	history, err := stepsJSON(req.Context)
	if err != nil {
		return "", err
	}

	rendered, err := f.prompts.GetPrompt(prompt.FallbackAnswerType).Render(struct {
		Context  string
		Question string
	}{
		Context:  history,
		Question: req.Question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render fallback prompt: %w", err)
	}

	answer, err := f.llm.Ask(ctx, NewEmptyFragment().AddMessage(UserMessageRole, rendered))
	if err != nil {
		return "", fmt.Errorf("failed to ask LLM for a fallback answer: %w", err)
	}

	last := answer.LastMessage()
	if last == nil || strings.TrimSpace(last.Content) == "" {
		return "", fmt.Errorf("LLM returned an empty fallback answer")
	}
	xlog.Debug("LLM response for fallback answer", "response", last.Content)
	return strings.TrimSpace(last.Content), nil
}
