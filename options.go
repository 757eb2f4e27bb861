package reasoner

import (
	"time"

	"github.com/mudler/reasoner/prompt"
)

const (
	DefaultMaxSteps         = 10
	DefaultMaxRetries       = 3
	DefaultProposalAttempts = 3

	DefaultProposalBackoff    = 500 * time.Millisecond
	DefaultProposalBackoffMax = 10 * time.Second
)

type Options struct {
	prompts          prompt.PromptMap
	maxSteps         int
	maxRetries       int
	proposalAttempts int
	backoffInitial   time.Duration
	backoffMax       time.Duration
	toolTimeout      time.Duration
	statusCallback   func(string)
	stepCallback     func(ReasoningStep)
	metrics          *Metrics
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		maxSteps:         DefaultMaxSteps,
		maxRetries:       DefaultMaxRetries,
		proposalAttempts: DefaultProposalAttempts,
		backoffInitial:   DefaultProposalBackoff,
		backoffMax:       DefaultProposalBackoffMax,
		statusCallback:   func(s string) {},
		stepCallback:     func(ReasoningStep) {},
	}
}

func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithMaxSteps sets the hard cap of steps per question
func WithMaxSteps(i int) func(o *Options) {
	return func(o *Options) {
		if i > 0 {
			o.maxSteps = i
		}
	}
}

// WithMaxRetries sets how many consecutive failures of the same tool are
// tolerated before the fallback answerer takes over
func WithMaxRetries(i int) func(o *Options) {
	return func(o *Options) {
		if i > 0 {
			o.maxRetries = i
		}
	}
}

// WithProposalAttempts bounds how many times a malformed or failed step
// proposal is requested again before the session fails
func WithProposalAttempts(i int) func(o *Options) {
	return func(o *Options) {
		if i > 0 {
			o.proposalAttempts = i
		}
	}
}

// WithProposalBackoff sets the exponential backoff between proposal
// attempts. A zero initial interval retries immediately.
func WithProposalBackoff(initial, max time.Duration) func(o *Options) {
	return func(o *Options) {
		o.backoffInitial = initial
		o.backoffMax = max
	}
}

// WithToolTimeout bounds every single tool call. A timed out call counts
// as an ordinary tool failure.
func WithToolTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) {
		o.toolTimeout = d
	}
}

// WithPrompt allows to set a custom prompt for a given PromptType
func WithPrompt(t prompt.PromptType, p prompt.Prompt) func(o *Options) {
	return func(o *Options) {
		if o.prompts == nil {
			o.prompts = make(prompt.PromptMap)
		}

		o.prompts[t] = p
	}
}

// WithStatusCallback sets a callback function to receive status updates during execution
func WithStatusCallback(fn func(string)) func(o *Options) {
	return func(o *Options) {
		o.statusCallback = fn
	}
}

// WithStepCallback runs the callback on every step appended to the history.
// It is called while the session is locked and must not call back into the controller.
func WithStepCallback(fn func(ReasoningStep)) func(o *Options) {
	return func(o *Options) {
		o.stepCallback = fn
	}
}

// WithMetrics instruments the controller
func WithMetrics(m *Metrics) func(o *Options) {
	return func(o *Options) {
		o.metrics = m
	}
}
