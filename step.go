package reasoner

import (
	"encoding/json"
	"fmt"
	"maps"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// ReasoningStep is one unit of reasoning progress: either a direct answer
// from the proposer or a tool invocation together with its outcome.
type ReasoningStep struct {
	ID           int            `json:"step_id"`
	Reasoning    string         `json:"reasoning"`
	RequiresTool bool           `json:"requires_tool"`
	ToolName     string         `json:"tool_name,omitempty"`
	ToolParams   map[string]any `json:"tool_params,omitempty"`
	Result       any            `json:"result"`
	Status       StepStatus     `json:"status"`
	Confidence   int            `json:"confidence"`
	Continue     bool           `json:"continue"`
	// IsFallback is set when Result was produced by the fallback answerer
	// instead of the proposer or a tool.
	IsFallback bool `json:"is_fallback,omitempty"`
}

// Sealed reports whether the step reached a terminal status.
func (s ReasoningStep) Sealed() bool {
	return s.Status == StepCompleted || s.Status == StepFailed
}

// ResultString renders Result as text. Strings are returned as is,
// structured values as JSON.
func (s ReasoningStep) ResultString() string {
	switch r := s.Result.(type) {
	case nil:
		return ""
	case string:
		return r
	case fmt.Stringer:
		return r.String()
	}

	dat, err := json.Marshal(s.Result)
	if err != nil {
		return fmt.Sprint(s.Result)
	}
	return string(dat)
}

func (s ReasoningStep) clone() ReasoningStep {
	s.ToolParams = maps.Clone(s.ToolParams)
	return s
}
