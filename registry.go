package reasoner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrToolNameEmpty         = errors.New("tool name is empty")
	ErrToolAlreadyRegistered = errors.New("tool is already registered")
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolParams            = errors.New("invalid tool parameters")
	ErrToolExecution         = errors.New("tool execution failed")
)

type registryEntry struct {
	descriptor ToolDescriptor
	tool       Tool
}

// Registry stores tools by name and dispatches calls to them.
// It is safe for concurrent use, so several controllers can share one.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
	order   []string
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{entries: map[string]registryEntry{}}
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Name collisions are rejected.
func (r *Registry) Register(tool Tool) error {
	descriptor := tool.Descriptor()
	if descriptor.Name == "" {
		return ErrToolNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = map[string]registryEntry{}
	}
	if _, exists := r.entries[descriptor.Name]; exists {
		return fmt.Errorf("%w: %q", ErrToolAlreadyRegistered, descriptor.Name)
	}

	r.entries[descriptor.Name] = registryEntry{descriptor: descriptor, tool: tool}
	r.order = append(r.order, descriptor.Name)
	return nil
}

func (r *Registry) Resolve(name string) (Tool, ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, ToolDescriptor{}, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return entry.tool, entry.descriptor, nil
}

func (r *Registry) Has(name string) bool {
	_, _, err := r.Resolve(name)
	return err == nil
}

// Descriptors returns the schema list in registration order.
func (r *Registry) Descriptors() []ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.entries[name].descriptor)
	}
	return descriptors
}

// Invoke checks that every declared parameter is present and runs the tool.
// Errors returned by the tool are wrapped with ErrToolExecution.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tool, descriptor, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, p := range descriptor.Parameters {
		if _, ok := params[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q is missing %s", ErrToolParams, name, strings.Join(missing, ", "))
	}

	result, err := tool.Run(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrToolExecution, name, err)
	}
	return result, nil
}
