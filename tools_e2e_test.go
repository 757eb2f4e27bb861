package reasoner_test

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/mudler/reasoner"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type SearchTool struct {
	searchedQuery string
	results       []string
	fail          bool
}

type SearchArgs struct {
	Query string `json:"query" description:"The topic to search for"`
}

func (s *SearchTool) Run(_ context.Context, args SearchArgs) (any, error) {
	s.searchedQuery = args.Query
	if s.fail {
		return nil, errors.New("search backend unavailable")
	}

	// Mocked search result
	searchResult := struct {
		Results []string `json:"results"`
	}{
		Results: []string{
			"Today, prime minister of UK declared war to Italy",
			"Italy is about to prepare to war against UK",
		},
	}

	if len(s.results) > 0 {
		searchResult.Results = s.results
	}

	b, err := json.Marshal(searchResult)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

var _ = Describe("Reasoning with tools", Label("e2e"), func() {
	BeforeEach(func() {
		if !e2eEnabled {
			Skip("LOCALAI_E2E is not set")
		}
	})

	newRegistry := func(searchTool *SearchTool) *Registry {
		registry, err := NewRegistry(&ToolDefinition[SearchArgs]{
			ToolRunner:  searchTool,
			Name:        "search",
			Description: "A search engine to find information about a topic",
		})
		Expect(err).ToNot(HaveOccurred())
		return registry
	}

	It("answers using the search tool", func() {
		defaultLLM := NewOpenAILLM(defaultModel, "", apiEndpoint)
		searchTool := &SearchTool{
			results: []string{
				"Isaac Asimov was born on January 2, 1920, in Petrovichi, Russia.",
			},
		}

		c := NewLLMController(defaultLLM, newRegistry(searchTool), WithMaxSteps(5))
		steps, answer, err := c.Run(context.TODO(), "Where was Isaac Asimov born? Search for it.")
		Expect(err).ToNot(HaveOccurred())
		Expect(steps).ToNot(BeEmpty())
		Expect(len(steps)).To(BeNumerically("<=", 5))
		Expect(answer).ToNot(BeEmpty())
	})

	It("falls back when the tool keeps failing", func() {
		defaultLLM := NewOpenAILLM(defaultModel, "", apiEndpoint)
		searchTool := &SearchTool{fail: true}

		c := NewLLMController(defaultLLM, newRegistry(searchTool), WithMaxSteps(6), WithMaxRetries(1))
		steps, answer, err := c.Run(context.TODO(), "What are the latest news today? Use the search tool.")
		Expect(err).ToNot(HaveOccurred())
		Expect(answer).ToNot(BeEmpty())
		if searchTool.searchedQuery != "" {
			Expect(steps[len(steps)-1].IsFallback).To(BeTrue())
		}
	})

	It("uses tools from MCP servers", func() {
		defaultLLM := NewOpenAILLM(defaultModel, "", apiEndpoint)

		command := exec.Command("docker", "run", "-i", "--rm",
			"ghcr.io/mudler/mcps/weather:master")

		transport := &mcp.CommandTransport{
			Command: command,
		}
		client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v1.0.0"}, nil)
		mcpSession, err := client.Connect(context.Background(), transport, nil)
		Expect(err).ToNot(HaveOccurred())
		defer mcpSession.Close()

		registry, err := NewRegistry()
		Expect(err).ToNot(HaveOccurred())
		Expect(registry.RegisterMCP(context.Background(), mcpSession)).To(Succeed())
		Expect(registry.Has("get_weather")).To(BeTrue())

		c := NewLLMController(defaultLLM, registry, WithMaxSteps(4))
		steps, _, err := c.Run(context.TODO(), "What's the weather in san francisco?")
		Expect(err).ToNot(HaveOccurred())
		Expect(steps).ToNot(BeEmpty())
	})
})
