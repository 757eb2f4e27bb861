package builtin

import (
	"github.com/mudler/reasoner"
	"github.com/tmc/langchaingo/tools"
)

const CalculatorToolName = "calculator"

// NewCalculator evaluates arithmetic expressions (starlark syntax, math
// module available) given as "expression". Evaluation errors are tool errors.
func NewCalculator() reasoner.Tool {
	return &langchainTool{
		tool:        tools.Calculator{},
		name:        CalculatorToolName,
		description: "A tool for math calculations, takes an arithmetic expression such as (1+2)*3 or sqrt(16)",
		param:       "expression",
		errorPrefix: "error from evaluator",
	}
}
