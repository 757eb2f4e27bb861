package prompt

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

type StaticPrompt struct {
	template string
}

type Prompt interface {
	Render(data any) (string, error)
}

func NewPrompt(template string) StaticPrompt {
	return StaticPrompt{template: template}
}

// Render executes the template with sprig functions. Referencing a key
// missing from a map is an error rather than "<no value>".
func (p StaticPrompt) Render(data any) (string, error) {
	tmpl, err := template.New("prompt").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(p.template)
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

type PromptMap map[PromptType]Prompt

func (p PromptMap) GetPrompt(t PromptType) Prompt {
	prompter, exists := p[t]
	if !exists {
		return defaultPromptMap[t]
	}

	return prompter
}
