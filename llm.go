package reasoner

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// LLM is the language model backend shared by the step proposer and the
// fallback answerer.
type LLM interface {
	Ask(ctx context.Context, f Fragment) (Fragment, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}
