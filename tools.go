package reasoner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ToolDescriptor describes a tool to the proposer and to the registry.
// Parameters lists the parameter names that must be present on every call.
type ToolDescriptor struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Parameters  []string              `json:"-"`
	Schema      jsonschema.Definition `json:"parameters"`
}

// Tool is a named callable the controller can dispatch to.
type Tool interface {
	Descriptor() ToolDescriptor
	Run(ctx context.Context, params map[string]any) (any, error)
}

type Tools []Tool

func (t Tools) Descriptors() []ToolDescriptor {
	descriptors := make([]ToolDescriptor, 0, len(t))
	for _, tool := range t {
		descriptors = append(descriptors, tool.Descriptor())
	}
	return descriptors
}

// ToolFunc adapts a plain function to a tool body.
type ToolFunc func(ctx context.Context, params map[string]any) (any, error)

type funcTool struct {
	descriptor ToolDescriptor
	fn         ToolFunc
}

// NewTool builds an untyped tool. Every name in params is required.
func NewTool(name, description string, params []string, fn ToolFunc) Tool {
	properties := map[string]jsonschema.Definition{}
	for _, p := range params {
		properties[p] = jsonschema.Definition{}
	}

	return &funcTool{
		descriptor: ToolDescriptor{
			Name:        name,
			Description: description,
			Parameters:  params,
			Schema: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: properties,
				Required:   params,
			},
		},
		fn: fn,
	}
}

func (t *funcTool) Descriptor() ToolDescriptor {
	return t.descriptor
}

func (t *funcTool) Run(ctx context.Context, params map[string]any) (any, error) {
	return t.fn(ctx, params)
}

// ToolRunner is the body of a typed tool.
type ToolRunner[T any] interface {
	Run(ctx context.Context, args T) (any, error)
}

// ToolDefinition is a tool whose parameters are described by the struct T.
// The schema is generated from T's json, description, enum and required
// tags, and incoming params are decoded into a T before running.
type ToolDefinition[T any] struct {
	ToolRunner  ToolRunner[T]
	Name        string
	Description string
}

func (t *ToolDefinition[T]) Descriptor() ToolDescriptor {
	var args T
	descriptor := ToolDescriptor{
		Name:        t.Name,
		Description: t.Description,
		Schema:      jsonschema.Definition{Type: jsonschema.Object},
	}

	schema, err := jsonschema.GenerateSchemaForType(args)
	if err != nil {
		xlog.Error("failed to generate tool schema", "tool", t.Name, "error", err)
		return descriptor
	}

	descriptor.Schema = *schema
	descriptor.Parameters = schema.Required
	return descriptor
}

func (t *ToolDefinition[T]) Run(ctx context.Context, params map[string]any) (any, error) {
	var args T
	if len(params) > 0 {
		dat, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrToolParams, err)
		}
		if err := json.Unmarshal(dat, &args); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrToolParams, err)
		}
	}

	return t.ToolRunner.Run(ctx, args)
}
