package reasoner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/mudler/xlog"
)

var (
	ErrProposalExhausted = errors.New("step proposal attempts exhausted")
	ErrSessionFinished   = errors.New("reasoning session already finished")
	ErrNoFallback        = errors.New("no fallback answerer configured")
)

// Termination reasons, as reported in logs and metrics.
const (
	ReasonMaxSteps       = "max_steps"
	ReasonConverged      = "converged"
	ReasonProposalFailed = "proposal_failed"
	ReasonInterrupted    = "interrupted"
)

// Controller drives one reasoning session at a time: it asks the proposer
// for steps, dispatches tools, counts consecutive failures per tool and
// hands over to the fallback answerer once a tool exhausts its budget.
//
// Run and Reset are serialized on the controller. Distinct controllers
// share no mutable state and may run concurrently, also over one Registry.
type Controller struct {
	mu       sync.Mutex
	proposer StepProposer
	registry *Registry
	fallback FallbackAnswerer
	o        *Options

	sessionID string
	history   History
	failures  map[string]int
}

func NewController(proposer StepProposer, registry *Registry, fallback FallbackAnswerer, opts ...Option) *Controller {
	o := defaultOptions()
	o.Apply(opts...)

	if registry == nil {
		registry = &Registry{}
	}

	c := &Controller{
		proposer: proposer,
		registry: registry,
		fallback: fallback,
		o:        o,
	}
	c.reset()
	return c
}

// NewLLMController wires a controller whose proposer and fallback answerer
// are both backed by llm.
func NewLLMController(llm LLM, registry *Registry, opts ...Option) *Controller {
	return NewController(NewLLMProposer(llm, opts...), registry, NewLLMFallback(llm, opts...), opts...)
}

// Reset clears the history and every failure counter, starting a new
// session. It waits for an in-flight Run to return.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.history.clear()
	c.failures = map[string]int{}
	c.sessionID = uuid.NewString()
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// History returns a copy of the steps of the current session.
func (c *Controller) History() []ReasoningStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Steps()
}

// ConsecutiveFailures returns the current failure streak of a tool.
func (c *Controller) ConsecutiveFailures(tool string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[tool]
}

// Run reasons about question until the proposer converges, the step budget
// is spent or a failing tool forces a fallback answer. It returns the full
// history and the result of the last step.
//
// Tool failures never surface as errors. Run fails only when no valid step
// proposal could be obtained within the attempt budget, or when ctx is done;
// the history collected so far is returned in both cases.
func (c *Controller) Run(ctx context.Context, question string) ([]ReasoningStep, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason, done := c.finished(); done {
		return c.history.Steps(), "", fmt.Errorf("%w (%s), reset it first", ErrSessionFinished, reason)
	}

	xlog.Debug("Starting reasoning", "session", c.sessionID, "question", question)
	for {
		if err := ctx.Err(); err != nil {
			return c.interrupted(err)
		}

		proposal, err := c.propose(ctx, question)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return c.interrupted(ctxErr)
			}
			xlog.Error("Giving up on reasoning", "session", c.sessionID, "error", err)
			c.o.metrics.session(ReasonProposalFailed)
			return c.history.Steps(), "", err
		}

		if err := c.act(ctx, question, proposal); err != nil {
			return c.history.Steps(), "", err
		}
		if err := ctx.Err(); err != nil {
			return c.interrupted(err)
		}

		if reason, done := c.finished(); done {
			last, _ := c.history.Last()
			xlog.Debug("Reasoning finished", "session", c.sessionID, "reason", reason, "steps", c.history.Len(), "fallback", last.IsFallback)
			c.o.statusCallback(fmt.Sprintf("reasoning finished (%s) after %d steps", reason, c.history.Len()))
			c.o.metrics.session(reason)
			return c.history.Steps(), last.ResultString(), nil
		}
	}
}

// finished evaluates the termination predicate on the current history.
func (c *Controller) finished() (string, bool) {
	last, ok := c.history.Last()
	switch {
	case !ok:
		return "", false
	case c.history.Len() >= c.o.maxSteps:
		return ReasonMaxSteps, true
	case !last.Continue:
		return ReasonConverged, true
	}
	return "", false
}

func (c *Controller) interrupted(err error) ([]ReasoningStep, string, error) {
	xlog.Warn("Reasoning interrupted", "session", c.sessionID, "steps", c.history.Len(), "error", err)
	c.o.metrics.session(ReasonInterrupted)
	return c.history.Steps(), "", fmt.Errorf("reasoning interrupted: %w", err)
}

// propose asks for the next step, retrying failed or malformed proposals
// with exponential backoff up to the configured number of attempts.
func (c *Controller) propose(ctx context.Context, question string) (StepProposal, error) {
	req := ProposalRequest{
		Context:  c.history.Steps(),
		Question: question,
		Tools:    c.registry.Descriptors(),
	}

	var (
		proposal StepProposal
		attempts int
		lastErr  error
	)
	operation := func() error {
		attempts++
		p, err := c.proposer.Propose(ctx, req)
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			c.o.metrics.proposalFailure()
			xlog.Warn("Step proposal failed", "session", c.sessionID, "attempt", attempts, "error", err)
			c.o.statusCallback(fmt.Sprintf("step proposal failed (attempt %d/%d): %v", attempts, c.o.proposalAttempts, err))
			return err
		}
		proposal = p
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.backOff(), uint64(c.o.proposalAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return StepProposal{}, ctxErr
		}
		return StepProposal{}, fmt.Errorf("%w after %d attempts: %w", ErrProposalExhausted, attempts, lastErr)
	}

	xlog.Debug("Step proposed", "session", c.sessionID, "reasoning", proposal.Reasoning, "requires_tool", proposal.RequiresTool, "confidence", proposal.Confidence)
	return proposal, nil
}

func (c *Controller) backOff() backoff.BackOff {
	if c.o.backoffInitial <= 0 {
		return &backoff.ZeroBackOff{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.o.backoffInitial
	if c.o.backoffMax > 0 {
		b.MaxInterval = c.o.backoffMax
	}
	// attempts are bounded by count, not by elapsed time
	b.MaxElapsedTime = 0
	return b
}

// act turns a proposal into sealed steps. A tool failure that exhausts the
// tool's budget is followed by a fallback step that ends the session.
func (c *Controller) act(ctx context.Context, question string, p StepProposal) error {
	step := ReasoningStep{
		ID:           c.history.Len() + 1,
		Reasoning:    p.Reasoning,
		RequiresTool: p.RequiresTool,
		Confidence:   p.Confidence,
		Continue:     p.Continue,
		Status:       StepPending,
	}

	if !p.RequiresTool {
		step.Result = p.Result
		step.Status = StepCompleted
		return c.commit(step)
	}

	step.ToolName = p.ToolUsage.Name
	step.ToolParams = p.ToolUsage.Params
	c.o.statusCallback(fmt.Sprintf("calling tool %s", step.ToolName))

	result, err := c.invoke(ctx, step.ToolName, step.ToolParams)
	if err == nil {
		c.failures[step.ToolName] = 0
		step.Result = result
		step.Status = StepCompleted
		return c.commit(step)
	}

	step.Status = StepFailed
	step.Result = err.Error()

	// a cancelled session is not the tool's fault
	if ctx.Err() != nil {
		return c.commit(step)
	}

	c.failures[step.ToolName]++
	streak := c.failures[step.ToolName]
	c.o.metrics.toolFailure(c.toolLabel(step.ToolName))
	xlog.Warn("Tool call failed", "session", c.sessionID, "tool", step.ToolName, "consecutive_failures", streak, "error", err)

	if streak < c.o.maxRetries {
		return c.commit(step)
	}

	c.o.metrics.escalation(c.toolLabel(step.ToolName))
	xlog.Warn("Tool failure budget exhausted, falling back", "session", c.sessionID, "tool", step.ToolName, "max_retries", c.o.maxRetries)
	c.o.statusCallback(fmt.Sprintf("tool %s failed %d times in a row, falling back", step.ToolName, streak))

	// On the last allowed step the fallback answer replaces the failure in
	// place so the history never grows past maxSteps.
	if step.ID >= c.o.maxSteps {
		return c.commit(c.answerWithFallback(ctx, question, step, append(c.history.Steps(), step)))
	}

	if err := c.commit(step); err != nil {
		return err
	}
	fallback := ReasoningStep{
		ID:        c.history.Len() + 1,
		Reasoning: fmt.Sprintf("Tool %q failed %d consecutive times, answering from the reasoning collected so far", step.ToolName, streak),
		Status:    StepPending,
	}
	return c.commit(c.answerWithFallback(ctx, question, fallback, c.history.Steps()))
}

// answerWithFallback fills step with the fallback answer. The returned step
// never continues the session.
func (c *Controller) answerWithFallback(ctx context.Context, question string, step ReasoningStep, steps []ReasoningStep) ReasoningStep {
	step.Continue = false

	var (
		answer string
		err    = ErrNoFallback
	)
	if c.fallback != nil {
		answer, err = c.fallback.Answer(ctx, FallbackRequest{Context: steps, Question: question})
	}
	if err != nil {
		xlog.Error("Fallback answer failed", "session", c.sessionID, "error", err)
		msg := fmt.Sprintf("fallback answer failed: %v", err)
		if prev := step.ResultString(); prev != "" {
			msg = prev + "; " + msg
		}
		step.Result = msg
		step.Status = StepFailed
		return step
	}

	step.Result = answer
	step.Status = StepCompleted
	step.IsFallback = true
	return step
}

func (c *Controller) invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	if c.o.toolTimeout <= 0 {
		return c.registry.Invoke(ctx, name, params)
	}

	toolCtx, cancel := context.WithTimeout(ctx, c.o.toolTimeout)
	defer cancel()

	result, err := c.registry.Invoke(toolCtx, name, params)
	if err == nil && errors.Is(toolCtx.Err(), context.DeadlineExceeded) {
		// the tool ignored its deadline and returned late
		return nil, fmt.Errorf("%w: %s: %w", ErrToolExecution, name, toolCtx.Err())
	}
	return result, err
}

func (c *Controller) commit(step ReasoningStep) error {
	if err := c.history.Append(step); err != nil {
		return err
	}

	c.o.metrics.step(step.Status)
	xlog.Debug("Reasoning step", "session", c.sessionID, "step", step.ID, "status", step.Status, "tool", step.ToolName, "continue", step.Continue)
	c.o.stepCallback(step.clone())
	return nil
}

func (c *Controller) toolLabel(name string) string {
	if c.registry.Has(name) {
		return name
	}
	return unregisteredTool
}
