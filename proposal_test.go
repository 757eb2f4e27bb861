package reasoner_test

import (
	"errors"

	. "github.com/mudler/reasoner"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseProposal", func() {
	It("parses a direct answer", func() {
		p, err := ParseProposal(`{"reasoning": "Known fact", "requires_tool": false, "tool_usage": null, "result": "Paris", "confidence": 95, "continue": false}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(Equal(StepProposal{
			Reasoning:  "Known fact",
			Result:     "Paris",
			Confidence: 95,
		}))
	})

	It("parses a tool call", func() {
		p, err := ParseProposal(`{"reasoning": "Need the sum", "requires_tool": true, "tool_usage": {"name": "sum_numbers", "params": {"numbers": [1, 2.5]}}, "result": "", "confidence": 60, "continue": true}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.RequiresTool).To(BeTrue())
		Expect(p.Continue).To(BeTrue())
		Expect(p.ToolUsage).ToNot(BeNil())
		Expect(p.ToolUsage.Name).To(Equal("sum_numbers"))
		Expect(p.ToolUsage.Params).To(HaveKeyWithValue("numbers", []any{1.0, 2.5}))
	})

	It("strips markdown code fences", func() {
		for _, raw := range []string{
			"```json\n{\"reasoning\": \"r\", \"requires_tool\": false, \"result\": \"x\", \"confidence\": 10, \"continue\": true}\n```",
			"```\n{\"reasoning\": \"r\", \"requires_tool\": false, \"result\": \"x\", \"confidence\": 10, \"continue\": true}\n```",
			"  ```json{\"reasoning\": \"r\", \"requires_tool\": false, \"result\": \"x\", \"confidence\": 10, \"continue\": true}```  ",
		} {
			p, err := ParseProposal(raw)
			Expect(err).ToNot(HaveOccurred(), raw)
			Expect(p.Result).To(Equal("x"))
		}
	})

	It("keeps structured results", func() {
		p, err := ParseProposal(`{"reasoning": "r", "requires_tool": false, "result": {"total": 3}, "confidence": 100.0, "continue": false}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Result).To(Equal(map[string]any{"total": 3.0}))
		Expect(p.Confidence).To(Equal(100))
	})

	It("accepts a null result on a step that continues", func() {
		p, err := ParseProposal(`{"reasoning": "Still thinking", "requires_tool": false, "tool_usage": null, "result": null, "confidence": 30, "continue": true}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Result).To(BeNil())
		Expect(p.Continue).To(BeTrue())
	})

	DescribeTable("rejects malformed proposals",
		func(raw string) {
			_, err := ParseProposal(raw)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrProposalParse)).To(BeTrue())
		},
		Entry("empty", "   "),
		Entry("prose", "The answer is 42"),
		Entry("array", `[1, 2]`),
		Entry("trailing text", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": 1, "continue": false} done`),
		Entry("two objects", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": 1, "continue": false}{}`),
		Entry("missing reasoning", `{"requires_tool": false, "result": "x", "confidence": 1, "continue": false}`),
		Entry("missing requires_tool", `{"reasoning": "r", "result": "x", "confidence": 1, "continue": false}`),
		Entry("missing confidence", `{"reasoning": "r", "requires_tool": false, "result": "x", "continue": false}`),
		Entry("missing continue", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": 1}`),
		Entry("confidence above range", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": 101, "continue": false}`),
		Entry("negative confidence", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": -1, "continue": false}`),
		Entry("string confidence", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": "90", "continue": false}`),
		Entry("boolean confidence", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": true, "continue": false}`),
		Entry("null confidence", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": null, "continue": false}`),
		Entry("answer without result key", `{"reasoning": "r", "requires_tool": false, "confidence": 1, "continue": true}`),
		Entry("fractional confidence", `{"reasoning": "r", "requires_tool": false, "result": "x", "confidence": 50.5, "continue": false}`),
		Entry("final answer with null result", `{"reasoning": "r", "requires_tool": false, "result": null, "confidence": 1, "continue": false}`),
		Entry("tool call without tool_usage", `{"reasoning": "r", "requires_tool": true, "tool_usage": null, "confidence": 1, "continue": true}`),
		Entry("tool call without name", `{"reasoning": "r", "requires_tool": true, "tool_usage": {"name": " ", "params": {}}, "confidence": 1, "continue": true}`),
		Entry("tool call without params", `{"reasoning": "r", "requires_tool": true, "tool_usage": {"name": "search"}, "confidence": 1, "continue": true}`),
		Entry("wrong field type", `{"reasoning": 3, "requires_tool": false, "result": "x", "confidence": 1, "continue": false}`),
	)

	Context("Validate", func() {
		It("checks hand built proposals", func() {
			Expect(StepProposal{Confidence: 50}.Validate()).To(Succeed())
			Expect(StepProposal{Confidence: -3}.Validate()).To(MatchError(ErrProposalParse))
			Expect(StepProposal{RequiresTool: true}.Validate()).To(MatchError(ErrProposalParse))
			Expect(StepProposal{RequiresTool: true, ToolUsage: &ToolUsage{Name: "search"}}.Validate()).To(MatchError(ErrProposalParse))
			Expect(StepProposal{RequiresTool: true, ToolUsage: &ToolUsage{Name: "search", Params: map[string]any{}}}.Validate()).To(Succeed())
		})
	})
})
