package reasoner

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("LLM returned no choices")

type OpenAIClient struct {
	model       string
	temperature float32
	client      *openai.Client
}

// NewOpenAILLM returns an LLM talking to any OpenAI compatible endpoint.
// An empty baseURL targets api.openai.com.
func NewOpenAILLM(model, apiKey, baseURL string) *OpenAIClient {
	return &OpenAIClient{
		model:  model,
		client: openaiClient(apiKey, baseURL),
	}
}

// WithTemperature returns a copy of the client sampling at the given temperature.
func (llm *OpenAIClient) WithTemperature(t float32) *OpenAIClient {
	c := *llm
	c.temperature = t
	return &c
}

// Ask prompts to the LLM with the provided messages
// and returns a Fragment containing the response
func (llm *OpenAIClient) Ask(ctx context.Context, f Fragment) (Fragment, error) {
	resp, err := llm.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: f.Messages,
		},
	)
	if err != nil {
		return Fragment{}, err
	}
	if len(resp.Choices) == 0 {
		return Fragment{}, ErrNoChoices
	}

	return Fragment{
		Messages:       append(f.Messages, resp.Choices[0].Message),
		ParentFragment: &f,
	}, nil
}

func (llm *OpenAIClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	request.Model = llm.model
	if llm.temperature > 0 {
		request.Temperature = llm.temperature
	}
	return llm.client.CreateChatCompletion(ctx, request)
}

func openaiClient(apiKey string, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(config)
}
