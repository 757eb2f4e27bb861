package reasoner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mudler/reasoner/structures"
)

var ErrProposalParse = errors.New("malformed step proposal")

type ToolUsage struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// StepProposal is a validated step suggested by the proposer.
// ToolUsage is set if and only if RequiresTool is true.
type StepProposal struct {
	Reasoning    string     `json:"reasoning"`
	RequiresTool bool       `json:"requires_tool"`
	ToolUsage    *ToolUsage `json:"tool_usage"`
	Result       any        `json:"result"`
	Confidence   int        `json:"confidence"`
	Continue     bool       `json:"continue"`
}

// ParseProposal decodes exactly one JSON object, optionally wrapped in a
// markdown code fence, and validates it. Any deviation is reported as an
// error wrapping ErrProposalParse.
func ParseProposal(raw string) (StepProposal, error) {
	body := trimCodeFence(raw)
	if body == "" {
		return StepProposal{}, fmt.Errorf("%w: empty response", ErrProposalParse)
	}

	_, wire := structures.StructureStepProposal()
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(wire); err != nil {
		return StepProposal{}, fmt.Errorf("%w: %w", ErrProposalParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return StepProposal{}, fmt.Errorf("%w: unexpected data after the JSON object", ErrProposalParse)
	}

	return validateProposal(wire)
}

func validateProposal(wire *structures.StepProposal) (StepProposal, error) {
	switch {
	case wire.Reasoning == nil:
		return StepProposal{}, missingField("reasoning")
	case wire.RequiresTool == nil:
		return StepProposal{}, missingField("requires_tool")
	case !hasValue(wire.Confidence):
		return StepProposal{}, missingField("confidence")
	case wire.Continue == nil:
		return StepProposal{}, missingField("continue")
	}

	confidence, err := parseConfidence(wire.Confidence)
	if err != nil {
		return StepProposal{}, err
	}

	p := StepProposal{
		Reasoning:    *wire.Reasoning,
		RequiresTool: *wire.RequiresTool,
		Confidence:   confidence,
		Continue:     *wire.Continue,
	}

	if hasValue(wire.Result) {
		if err := json.Unmarshal(wire.Result, &p.Result); err != nil {
			return StepProposal{}, fmt.Errorf("%w: result: %w", ErrProposalParse, err)
		}
	}

	if !p.RequiresTool {
		// a null result is a thinking step, only allowed when reasoning goes on
		if len(wire.Result) == 0 || (!hasValue(wire.Result) && !p.Continue) {
			return StepProposal{}, missingField("result")
		}
		return p, nil
	}

	switch {
	case wire.ToolUsage == nil:
		return StepProposal{}, missingField("tool_usage")
	case wire.ToolUsage.Name == nil || strings.TrimSpace(*wire.ToolUsage.Name) == "":
		return StepProposal{}, missingField("tool_usage.name")
	case wire.ToolUsage.Params == nil:
		return StepProposal{}, missingField("tool_usage.params")
	}

	p.ToolUsage = &ToolUsage{
		Name:   strings.TrimSpace(*wire.ToolUsage.Name),
		Params: wire.ToolUsage.Params,
	}
	return p, nil
}

// parseConfidence accepts a bare JSON number only, quoted numbers are rejected.
func parseConfidence(raw json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: confidence: %w", ErrProposalParse, err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: confidence %s is not a number", ErrProposalParse, raw)
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: confidence %q is not an integer", ErrProposalParse, n.String())
	}
	if f < 0 || f > 100 {
		return 0, fmt.Errorf("%w: confidence %s out of range [0,100]", ErrProposalParse, n.String())
	}
	return int(f), nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrProposalParse, name)
}

func hasValue(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// trimCodeFence strips a surrounding ``` or ```json fence, nothing else.
func trimCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Validate checks the invariants ParseProposal enforces, for proposals that
// do not come from ParseProposal.
func (p StepProposal) Validate() error {
	if p.Confidence < 0 || p.Confidence > 100 {
		return fmt.Errorf("%w: confidence %d out of range [0,100]", ErrProposalParse, p.Confidence)
	}
	if !p.RequiresTool {
		return nil
	}
	if p.ToolUsage == nil || strings.TrimSpace(p.ToolUsage.Name) == "" {
		return missingField("tool_usage.name")
	}
	if p.ToolUsage.Params == nil {
		return missingField("tool_usage.params")
	}
	return nil
}
