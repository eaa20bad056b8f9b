package tools

import (
	"encoding/json"

	"github.com/openai/openai-go"
)

// OpenAITools exports the catalog in the shape the chat completions API
// expects for function calling.
func (r *Registry) OpenAITools() []openai.ChatCompletionToolParam {
	defs := r.Definitions()
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		var schema openai.FunctionParameters
		if err := json.Unmarshal(def.schemaJSON(), &schema); err != nil {
			// schemaJSON is produced by marshaling the same structure.
			continue
		}
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  schema,
			},
		})
	}
	return params
}
