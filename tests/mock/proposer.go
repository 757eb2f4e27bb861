package mock

import (
	"context"
	"fmt"
	"sync"

	. "github.com/mudler/reasoner"
)

type proposal struct {
	raw      string
	proposal StepProposal
	err      error
	parse    bool
}

// MockProposer replays scripted proposals and records every request.
type MockProposer struct {
	mu        sync.Mutex
	proposals []proposal
	index     int
	Requests  []ProposalRequest
}

func NewMockProposer() *MockProposer {
	return &MockProposer{}
}

func (m *MockProposer) Propose(ctx context.Context, req ProposalRequest) (StepProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.index >= len(m.proposals) {
		return StepProposal{}, fmt.Errorf("no more proposals configured")
	}

	p := m.proposals[m.index]
	m.index++
	if p.parse {
		return ParseProposal(p.raw)
	}
	return p.proposal, p.err
}

// AddRaw queues a raw model output that goes through ParseProposal.
func (m *MockProposer) AddRaw(raw string) *MockProposer {
	m.proposals = append(m.proposals, proposal{raw: raw, parse: true})
	return m
}

func (m *MockProposer) AddProposal(p StepProposal) *MockProposer {
	m.proposals = append(m.proposals, proposal{proposal: p})
	return m
}

func (m *MockProposer) AddError(err error) *MockProposer {
	m.proposals = append(m.proposals, proposal{err: err})
	return m
}

// AddAnswer queues a proposal answering directly.
func (m *MockProposer) AddAnswer(reasoning string, result any, cont bool) *MockProposer {
	return m.AddProposal(StepProposal{
		Reasoning:  reasoning,
		Result:     result,
		Confidence: 90,
		Continue:   cont,
	})
}

// AddToolCall queues a proposal calling a tool, continuing the session.
func (m *MockProposer) AddToolCall(reasoning, tool string, params map[string]any) *MockProposer {
	if params == nil {
		params = map[string]any{}
	}
	return m.AddProposal(StepProposal{
		Reasoning:    reasoning,
		RequiresTool: true,
		ToolUsage:    &ToolUsage{Name: tool, Params: params},
		Confidence:   50,
		Continue:     true,
	})
}

func (m *MockProposer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockFallback returns a fixed answer or error and records its requests.
type MockFallback struct {
	mu       sync.Mutex
	answer   string
	err      error
	Requests []FallbackRequest
}

func NewMockFallback(answer string) *MockFallback {
	return &MockFallback{answer: answer}
}

func (m *MockFallback) SetError(err error) *MockFallback {
	m.err = err
	return m
}

func (m *MockFallback) Answer(ctx context.Context, req FallbackRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *MockFallback) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
