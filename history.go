package reasoner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidStep = errors.New("invalid reasoning step")

// History is the append-only, causally ordered log of sealed steps of one
// reasoning session. The zero value is an empty history.
type History struct {
	steps []ReasoningStep
}

// Append seals step into the log. Only Completed or Failed steps whose ID
// directly follows the last appended one are accepted.
func (h *History) Append(step ReasoningStep) error {
	if !step.Sealed() {
		return fmt.Errorf("%w: step %d has status %q", ErrInvalidStep, step.ID, step.Status)
	}
	if want := len(h.steps) + 1; step.ID != want {
		return fmt.Errorf("%w: expected step id %d, got %d", ErrInvalidStep, want, step.ID)
	}

	h.steps = append(h.steps, step.clone())
	return nil
}

func (h *History) Len() int {
	return len(h.steps)
}

// Last returns the most recent step, if any.
func (h *History) Last() (ReasoningStep, bool) {
	if len(h.steps) == 0 {
		return ReasoningStep{}, false
	}
	return h.steps[len(h.steps)-1].clone(), true
}

// Steps returns a copy of the ordered steps.
func (h *History) Steps() []ReasoningStep {
	steps := make([]ReasoningStep, 0, len(h.steps))
	for _, s := range h.steps {
		steps = append(steps, s.clone())
	}
	return steps
}

// JSON serializes the ordered steps, as sent to the proposer and the
// fallback answerer. An empty history encodes as [].
func (h *History) JSON() (string, error) {
	return stepsJSON(h.steps)
}

func (h *History) Thoughts() string {
	return Thoughts(h.steps)
}

// Thoughts renders one "<id>.<reasoning>" line per step.
func Thoughts(steps []ReasoningStep) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, fmt.Sprintf("%d.%s", s.ID, s.Reasoning))
	}
	return strings.Join(lines, "\n")
}

func (h *History) clear() {
	h.steps = nil
}

func stepsJSON(steps []ReasoningStep) (string, error) {
	if steps == nil {
		steps = []ReasoningStep{}
	}
	dat, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("failed to serialize reasoning history: %w", err)
	}
	return string(dat), nil
}
