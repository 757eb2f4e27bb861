package builtin

import (
	"context"
	"errors"

	"github.com/mudler/reasoner"
)

const (
	SumToolName     = "sum_numbers"
	AverageToolName = "average_numbers"
)

type NumbersArgs struct {
	Numbers []float64 `json:"numbers" description:"The list of numbers"`
}

type sum struct{}

func (sum) Run(_ context.Context, args NumbersArgs) (any, error) {
	return total(args.Numbers), nil
}

type average struct{}

func (average) Run(_ context.Context, args NumbersArgs) (any, error) {
	if len(args.Numbers) == 0 {
		return nil, errors.New("the list of numbers must not be empty")
	}
	return total(args.Numbers) / float64(len(args.Numbers)), nil
}

func total(numbers []float64) float64 {
	t := 0.0
	for _, n := range numbers {
		t += n
	}
	return t
}

func NewSum() reasoner.Tool {
	return &reasoner.ToolDefinition[NumbersArgs]{
		ToolRunner:  sum{},
		Name:        SumToolName,
		Description: "A tool to compute the sum of a list of numbers",
	}
}

func NewAverage() reasoner.Tool {
	return &reasoner.ToolDefinition[NumbersArgs]{
		ToolRunner:  average{},
		Name:        AverageToolName,
		Description: "A tool to compute the average of a list of numbers",
	}
}

// All returns every builtin tool. Search results are capped at maxResults.
func All(maxResults int) (reasoner.Tools, error) {
	search, err := NewSearch(maxResults, "")
	if err != nil {
		return nil, err
	}
	return reasoner.Tools{search, NewCalculator(), NewSum(), NewAverage()}, nil
}
