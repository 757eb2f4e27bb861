package structures

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// StepProposal is the wire shape of one proposed reasoning step. Fields are
// pointers or raw messages so that absent keys can be told apart from zero
// values.
type StepProposal struct {
	Reasoning    *string         `json:"reasoning"`
	RequiresTool *bool           `json:"requires_tool"`
	ToolUsage    *ToolUsage      `json:"tool_usage"`
	Result       json.RawMessage `json:"result"`
	Confidence   json.RawMessage `json:"confidence"`
	Continue     *bool           `json:"continue"`
}

type ToolUsage struct {
	Name   *string        `json:"name"`
	Params map[string]any `json:"params"`
}

func StructureStepProposal() (Structure, *StepProposal) {
	return structureType[StepProposal]("reasoning_step",
		jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"reasoning": {
					Type:        jsonschema.String,
					Description: "Brief rationale for this step (1-2 sentences)",
				},
				"requires_tool": {
					Type:        jsonschema.Boolean,
					Description: "Whether a tool has to be called for this step",
				},
				"tool_usage": {
					Type:        jsonschema.Object,
					Description: "The tool to call, null when requires_tool is false",
					Nullable:    true,
					Properties: map[string]jsonschema.Definition{
						"name": {
							Type:        jsonschema.String,
							Description: "Name of one of the available tools",
						},
						"params": {
							Type:                 jsonschema.Object,
							Description:          "Tool parameters, as declared by the tool schema",
							AdditionalProperties: true,
						},
					},
					Required: []string{"name", "params"},
				},
				"result": {
					Type:        jsonschema.String,
					Description: "Conclusion from this step, may be null only when continue is true",
					Nullable:    true,
				},
				"confidence": {
					Type:        jsonschema.Integer,
					Description: "Certainty of the result, from 0 to 100",
				},
				"continue": {
					Type:        jsonschema.Boolean,
					Description: "Whether more reasoning steps are needed",
				},
			},
			Required: []string{"reasoning", "requires_tool", "tool_usage", "result", "confidence", "continue"},
		})
}
