package builtin

import (
	"github.com/mudler/reasoner"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const (
	SearchToolName   = "search"
	DefaultUserAgent = "reasoner"
)

// NewSearch returns a DuckDuckGo backed search tool taking a "query".
func NewSearch(maxResults int, userAgent string) (reasoner.Tool, error) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	ddg, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, err
	}
	return FromLangchain(ddg, SearchToolName, "A tool to search information on the web", "query"), nil
}
