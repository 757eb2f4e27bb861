package reasoner

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type MessageRole string

const (
	SystemMessageRole    MessageRole = "system"
	UserMessageRole      MessageRole = "user"
	AssistantMessageRole MessageRole = "assistant"
	ToolMessageRole      MessageRole = "tool"
)

func (r MessageRole) String() string {
	return string(r)
}

// Fragment is a slice of conversation exchanged with the LLM.
type Fragment struct {
	Messages       []openai.ChatCompletionMessage
	ParentFragment *Fragment
}

func NewEmptyFragment() Fragment {
	return Fragment{}
}

func NewFragment(messages ...openai.ChatCompletionMessage) Fragment {
	return Fragment{
		Messages: messages,
	}
}

func (f Fragment) AddMessage(role MessageRole, content string) Fragment {
	f.Messages = append(f.Messages, openai.ChatCompletionMessage{
		Role:    role.String(),
		Content: content,
	})
	return f
}

func (f Fragment) AddStartMessage(role MessageRole, content string) Fragment {
	f.Messages = append([]openai.ChatCompletionMessage{
		{
			Role:    role.String(),
			Content: content,
		},
	}, f.Messages...)
	return f
}

func (f Fragment) LastMessage() *openai.ChatCompletionMessage {
	if len(f.Messages) == 0 {
		return nil
	}
	return &f.Messages[len(f.Messages)-1]
}

func (f Fragment) String() string {
	var str strings.Builder
	for _, msg := range f.Messages {
		str.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		for _, tool := range msg.ToolCalls {
			str.WriteString(fmt.Sprintf("  Tool call: %s(%s)\n", tool.Function.Name, tool.Function.Arguments))
		}
	}

	return str.String()
}
