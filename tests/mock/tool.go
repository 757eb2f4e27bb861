package mock

import (
	"context"
	"sync"

	. "github.com/mudler/reasoner"
)

type toolResult struct {
	result any
	err    error
}

// MockTool implements the Tool interface for testing. Queued outcomes are
// consumed in order; once they run out the last one is repeated.
type MockTool struct {
	mu          sync.Mutex
	name        string
	description string
	params      []string
	results     []toolResult
	runIndex    int
	Calls       []map[string]any
}

func NewMockTool(name, description string, params ...string) *MockTool {
	return &MockTool{
		name:        name,
		description: description,
		params:      params,
	}
}

func (m *MockTool) Descriptor() ToolDescriptor {
	return NewTool(m.name, m.description, m.params, nil).Descriptor()
}

func (m *MockTool) Run(ctx context.Context, params map[string]any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, params)
	if len(m.results) == 0 {
		return "", nil
	}

	i := m.runIndex
	if i >= len(m.results) {
		i = len(m.results) - 1
	}
	m.runIndex++
	return m.results[i].result, m.results[i].err
}

func (m *MockTool) SetRunResult(result any) *MockTool {
	m.results = append(m.results, toolResult{result: result})
	return m
}

func (m *MockTool) SetRunError(err error) *MockTool {
	m.results = append(m.results, toolResult{err: err})
	return m
}

func (m *MockTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
