// Package builtin provides ready to register tools: web search, an
// arithmetic calculator and number list aggregates.
package builtin

import (
	"context"
	"errors"
	"strings"

	"github.com/mudler/reasoner"
	"github.com/tmc/langchaingo/tools"
)

// langchainTool exposes a langchaingo tool, which takes one free text
// input, as a registry tool with a single required parameter.
type langchainTool struct {
	tool        tools.Tool
	name        string
	description string
	param       string
	// errorPrefix marks outputs that are failures reported as text
	errorPrefix string
}

// FromLangchain wraps t. Empty name and description default to the ones of t.
func FromLangchain(t tools.Tool, name, description, param string) reasoner.Tool {
	if name == "" {
		name = t.Name()
	}
	if description == "" {
		description = t.Description()
	}
	return &langchainTool{tool: t, name: name, description: description, param: param}
}

func (l *langchainTool) Descriptor() reasoner.ToolDescriptor {
	return reasoner.NewTool(l.name, l.description, []string{l.param}, nil).Descriptor()
}

func (l *langchainTool) Run(ctx context.Context, params map[string]any) (any, error) {
	input, ok := params[l.param].(string)
	if !ok || strings.TrimSpace(input) == "" {
		return nil, errors.New(l.param + " must be a non empty string")
	}

	out, err := l.tool.Call(ctx, input)
	if err != nil {
		return nil, err
	}
	if l.errorPrefix != "" && strings.HasPrefix(out, l.errorPrefix) {
		return nil, errors.New(out)
	}
	return out, nil
}
