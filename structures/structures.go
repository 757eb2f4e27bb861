package structures

import "github.com/sashabaranov/go-openai/jsonschema"

// Structure pairs a JSON schema with the object the model output decodes into.
type Structure struct {
	Name   string
	Schema jsonschema.Definition
	Object any
}

func structureType[T any](name string, definition jsonschema.Definition) (Structure, *T) {
	var t T
	return Structure{Name: name, Schema: definition, Object: &t}, &t
}
