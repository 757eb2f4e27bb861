package reasoner

import (
	"context"
	"fmt"
	"strings"

	"github.com/mudler/reasoner/prompt"
	"github.com/mudler/reasoner/structures"
	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
)

type ProposalRequest struct {
	Context  []ReasoningStep
	Question string
	Tools    []ToolDescriptor
}

// StepProposer returns the next step for a question given the steps so far.
// Implementations must not retain or modify req.Context.
type StepProposer interface {
	Propose(ctx context.Context, req ProposalRequest) (StepProposal, error)
}

// LLMProposer asks an LLM for the next step using the StepProposalType prompt.
type LLMProposer struct {
	llm     LLM
	prompts prompt.PromptMap
}

func NewLLMProposer(llm LLM, opts ...Option) *LLMProposer {
	o := defaultOptions()
	o.Apply(opts...)

	return &LLMProposer{llm: llm, prompts: o.prompts}
}

func (p *LLMProposer) Propose(ctx context.Context, req ProposalRequest) (StepProposal, error) {
	history, err := stepsJSON(req.Context)
	if err != nil {
		return StepProposal{}, err
	}

	tools := req.Tools
	if tools == nil {
		tools = []ToolDescriptor{}
	}

	rendered, err := p.prompts.GetPrompt(prompt.StepProposalType).Render(struct {
		Context  string
		Question string
		Tools    []ToolDescriptor
	}{
		Context:  history,
		Question: req.Question,
		Tools:    tools,
	})
	if err != nil {
		return StepProposal{}, fmt.Errorf("failed to render step proposal prompt: %w", err)
	}

	structure, _ := structures.StructureStepProposal()
	resp, err := p.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Messages: NewEmptyFragment().AddMessage(UserMessageRole, rendered).Messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   structure.Name,
				Schema: &structure.Schema,
			},
		},
	})
	if err != nil {
		return StepProposal{}, fmt.Errorf("failed to ask LLM for the next step: %w", err)
	}
	if len(resp.Choices) == 0 {
		return StepProposal{}, fmt.Errorf("%w: %w", ErrProposalParse, ErrNoChoices)
	}

	msg := resp.Choices[0].Message
	raw := msg.Content
	if strings.TrimSpace(raw) == "" && len(msg.ToolCalls) > 0 {
		raw = msg.ToolCalls[0].Function.Arguments
	}

	xlog.Debug("LLM response for step proposal", "response", raw)
	return ParseProposal(raw)
}
