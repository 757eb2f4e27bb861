package prompt

type PromptType uint

const (
	StepProposalType PromptType = iota
	FallbackAnswerType
)

var (
	defaultPromptMap PromptMap = map[PromptType]Prompt{
		StepProposalType:   PromptStepProposal,
		FallbackAnswerType: PromptFallbackAnswer,
	}

	PromptStepProposal = NewPrompt(`Generate the next reasoning step to resolve the question through contextual analysis and tool usage:

[Rules]
* If the context directly answers the question with >95% confidence, set continue=false
* Tool parameters must strictly match the data types defined in tool schemas
* Stop calling a tool that keeps failing and answer with what you already know
* Always maintain valid JSON syntax (no comments, double quotes only)
* Never invent non-existent tools
* Keep reasoning in the same language the question was asked in

[Current Context]
{{.Context}}

[Current Question]
{{.Question}}

[Available Tools]
{{ .Tools | toJson }}

Return a valid JSON object following this structure:
{
    "reasoning": "Brief rationale for this step (1-2 sentences)",
    "requires_tool": true/false,
    "tool_usage": {"name": "tool_name", "params": {"key": "value"}} or null,
    "result": "Conclusion from this step",
    "confidence": 0-100,
    "continue": true/false
}

Examples:
Knowledge query:
{
    "reasoning": "The question requires historical data about WWII casualties",
    "requires_tool": true,
    "tool_usage": {"name": "search", "params": {"query": "World War II casualties"}},
    "result": "Attempting to retrieve casualty statistics",
    "confidence": 75,
    "continue": true
}

Final answer:
{
    "reasoning": "Context contains definitive population data from 2023 report",
    "requires_tool": false,
    "tool_usage": null,
    "result": "China's population: 1.411 billion",
    "confidence": 98,
    "continue": false
}`)

	PromptFallbackAnswer = NewPrompt(`You are an AI assistant that has to answer a question without using any more tools.
The tools used so far kept failing, so give the best possible final answer from the reasoning collected until now.
If the context is not enough, answer from your own knowledge and say that the answer could not be verified.

[Reasoning so far]
{{.Context}}

[Question]
{{.Question}}

Reply only with the final answer, in the same language the question was asked in.`)
)
