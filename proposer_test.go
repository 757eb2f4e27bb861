package reasoner_test

import (
	"context"
	"errors"

	. "github.com/mudler/reasoner"
	"github.com/mudler/reasoner/prompt"
	"github.com/mudler/reasoner/tests/mock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"
)

const validAnswer = `{"reasoning": "The sum is known", "requires_tool": false, "tool_usage": null, "result": "42", "confidence": 90, "continue": false}`

var _ = Describe("LLMProposer", func() {
	var (
		mockLLM *mock.MockOpenAIClient
		req     ProposalRequest
	)

	BeforeEach(func() {
		mockLLM = mock.NewMockOpenAIClient()
		req = ProposalRequest{
			Question: "What is 40 plus 2?",
			Context: []ReasoningStep{
				{ID: 1, Reasoning: "Add the numbers", RequiresTool: true, ToolName: "sum_numbers", Result: 42.0, Status: StepCompleted, Confidence: 80, Continue: true},
			},
			Tools: []ToolDescriptor{
				NewTool("sum_numbers", "Sum a list of numbers", []string{"numbers"}, nil).Descriptor(),
			},
		}
	})

	It("asks for a structured step and parses it", func() {
		mockLLM.AddCreateChatCompletionContent(validAnswer)

		p, err := NewLLMProposer(mockLLM).Propose(context.TODO(), req)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Result).To(Equal("42"))
		Expect(p.Continue).To(BeFalse())

		Expect(mockLLM.RequestHistory).To(HaveLen(1))
		sent := mockLLM.RequestHistory[0]
		Expect(sent.ResponseFormat).ToNot(BeNil())
		Expect(sent.ResponseFormat.Type).To(Equal(openai.ChatCompletionResponseFormatTypeJSONSchema))
		Expect(sent.ResponseFormat.JSONSchema.Name).To(Equal("reasoning_step"))

		Expect(sent.Messages).To(HaveLen(1))
		content := sent.Messages[0].Content
		Expect(content).To(ContainSubstring("What is 40 plus 2?"))
		Expect(content).To(ContainSubstring(`"name":"sum_numbers"`))
		Expect(content).To(ContainSubstring(`"step_id":1`))
	})

	It("renders an empty context and tool list as JSON arrays", func() {
		mockLLM.AddCreateChatCompletionContent(validAnswer)

		_, err := NewLLMProposer(mockLLM).Propose(context.TODO(), ProposalRequest{Question: "Q"})
		Expect(err).ToNot(HaveOccurred())
		Expect(mockLLM.RequestHistory[0].Messages[0].Content).To(ContainSubstring("[Current Context]\n[]"))
		Expect(mockLLM.RequestHistory[0].Messages[0].Content).To(ContainSubstring("[Available Tools]\n[]"))
	})

	It("accepts fenced output", func() {
		mockLLM.AddCreateChatCompletionContent("```json\n" + validAnswer + "\n```")

		p, err := NewLLMProposer(mockLLM).Propose(context.TODO(), req)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Reasoning).To(Equal("The sum is known"))
	})

	It("reads the arguments of a tool call reply", func() {
		mockLLM.AddCreateChatCompletionFunction("reasoning_step", validAnswer)

		p, err := NewLLMProposer(mockLLM).Propose(context.TODO(), req)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Result).To(Equal("42"))
	})

	It("reports malformed output", func() {
		mockLLM.AddCreateChatCompletionContent("The answer is 42")

		_, err := NewLLMProposer(mockLLM).Propose(context.TODO(), req)
		Expect(err).To(MatchError(ErrProposalParse))
	})

	It("reports empty replies", func() {
		mockLLM.SetCreateChatCompletionResponse(openai.ChatCompletionResponse{})

		_, err := NewLLMProposer(mockLLM).Propose(context.TODO(), req)
		Expect(err).To(MatchError(ErrProposalParse))
		Expect(err).To(MatchError(ErrNoChoices))
	})

	It("reports transport errors", func() {
		transport := errors.New("connection refused")
		mockLLM.SetCreateChatCompletionError(transport)

		_, err := NewLLMProposer(mockLLM).Propose(context.TODO(), req)
		Expect(errors.Is(err, transport)).To(BeTrue())
	})

	It("uses custom prompts", func() {
		mockLLM.AddCreateChatCompletionContent(validAnswer)

		custom := prompt.NewPrompt("Q: {{.Question}} with {{len .Tools}} tools")
		_, err := NewLLMProposer(mockLLM, WithPrompt(prompt.StepProposalType, custom)).Propose(context.TODO(), req)
		Expect(err).ToNot(HaveOccurred())
		Expect(mockLLM.RequestHistory[0].Messages[0].Content).To(Equal("Q: What is 40 plus 2? with 1 tools"))
	})

	It("fails on templates referencing unknown fields", func() {
		custom := prompt.NewPrompt("{{.Unknown}}")
		_, err := NewLLMProposer(mockLLM, WithPrompt(prompt.StepProposalType, custom)).Propose(context.TODO(), req)
		Expect(err).To(HaveOccurred())
		Expect(mockLLM.RequestHistory).To(BeEmpty())
	})
})

var _ = Describe("LLMFallback", func() {
	var mockLLM *mock.MockOpenAIClient

	BeforeEach(func() {
		mockLLM = mock.NewMockOpenAIClient()
	})

	It("answers from the collected reasoning", func() {
		mockLLM.SetAskResponse("  Rome is the capital of Italy.  ")

		answer, err := NewLLMFallback(mockLLM).Answer(context.TODO(), FallbackRequest{
			Question: "What is the capital of Italy?",
			Context: []ReasoningStep{
				{ID: 1, Reasoning: "Search it", RequiresTool: true, ToolName: "search", Result: "tool execution failed", Status: StepFailed},
			},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(answer).To(Equal("Rome is the capital of Italy."))

		Expect(mockLLM.FragmentHistory).To(HaveLen(1))
		sent := mockLLM.FragmentHistory[0].LastMessage()
		Expect(sent.Role).To(Equal(UserMessageRole.String()))
		Expect(sent.Content).To(ContainSubstring("What is the capital of Italy?"))
		Expect(sent.Content).To(ContainSubstring(`"status":"failed"`))
	})

	It("rejects empty answers", func() {
		mockLLM.SetAskResponse("   ")

		_, err := NewLLMFallback(mockLLM).Answer(context.TODO(), FallbackRequest{Question: "Q"})
		Expect(err).To(HaveOccurred())
	})

	It("reports LLM errors", func() {
		mockLLM.SetAskError(errors.New("llm down"))

		_, err := NewLLMFallback(mockLLM).Answer(context.TODO(), FallbackRequest{Question: "Q"})
		Expect(err).To(MatchError(ContainSubstring("llm down")))
	})
})

var _ = Describe("LLM controller", func() {
	It("runs a session end to end on one LLM", func() {
		mockLLM := mock.NewMockOpenAIClient()
		mockLLM.AddCreateChatCompletionContent("not json at all")
		mockLLM.AddCreateChatCompletionContent(`{"reasoning": "Search it", "requires_tool": true, "tool_usage": {"name": "search", "params": {"query": "news"}}, "result": "", "confidence": 40, "continue": true}`)
		mockLLM.SetAskResponse("No news available right now.")

		search := mock.NewMockTool("search", "Search", "query").SetRunError(errors.New("rate limited"))
		registry, err := NewRegistry(search)
		Expect(err).ToNot(HaveOccurred())

		c := NewLLMController(mockLLM, registry, WithMaxRetries(1), WithProposalBackoff(0, 0))
		steps, answer, err := c.Run(context.TODO(), "What are the news?")
		Expect(err).ToNot(HaveOccurred())
		Expect(answer).To(Equal("No news available right now."))
		Expect(steps).To(HaveLen(2))
		Expect(steps[0].Status).To(Equal(StepFailed))
		Expect(steps[1].IsFallback).To(BeTrue())
		Expect(mockLLM.RequestHistory).To(HaveLen(2))
	})
})
