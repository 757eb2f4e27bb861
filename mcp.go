package reasoner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// mcpTool forwards calls to a tool exposed by an MCP server.
type mcpTool struct {
	descriptor ToolDescriptor
	session    *mcp.ClientSession
}

func (t *mcpTool) Descriptor() ToolDescriptor {
	return t.descriptor
}

func (t *mcpTool) Run(ctx context.Context, params map[string]any) (any, error) {
	res, err := t.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.descriptor.Name,
		Arguments: params,
	})
	if err != nil {
		return nil, err
	}

	var result strings.Builder
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			result.WriteString(text.Text)
		}
	}

	if res.IsError {
		return nil, errors.New(result.String())
	}
	return result.String(), nil
}

type toolInputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// MCPTools lists the tools of an MCP session as registry tools.
// Tools with an unreadable input schema are skipped.
func MCPTools(ctx context.Context, session *mcp.ClientSession) (Tools, error) {
	list, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list MCP tools: %w", err)
	}

	tools := Tools{}
	for _, tool := range list.Tools {
		schema, err := mcpSchema(tool.InputSchema)
		if err != nil {
			xlog.Error("Skipping MCP tool with invalid input schema", "tool", tool.Name, "error", err)
			continue
		}

		tools = append(tools, &mcpTool{
			descriptor: ToolDescriptor{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  schema.Required,
				Schema:      schema,
			},
			session: session,
		})
	}
	return tools, nil
}

func mcpSchema(inputSchema any) (jsonschema.Definition, error) {
	var input toolInputSchema
	if inputSchema != nil {
		dat, err := json.Marshal(inputSchema)
		if err != nil {
			return jsonschema.Definition{}, err
		}
		if err := json.Unmarshal(dat, &input); err != nil {
			return jsonschema.Definition{}, err
		}
	}

	props := map[string]jsonschema.Definition{}
	if len(input.Properties) > 0 {
		dat, err := json.Marshal(input.Properties)
		if err != nil {
			return jsonschema.Definition{}, err
		}
		if err := json.Unmarshal(dat, &props); err != nil {
			return jsonschema.Definition{}, err
		}
	}

	return jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props,
		Required:   input.Required,
	}, nil
}

// RegisterMCP registers the tools of every session into the registry.
func (r *Registry) RegisterMCP(ctx context.Context, sessions ...*mcp.ClientSession) error {
	for _, session := range sessions {
		tools, err := MCPTools(ctx, session)
		if err != nil {
			return err
		}
		for _, tool := range tools {
			if err := r.Register(tool); err != nil {
				return err
			}
		}
	}
	return nil
}
