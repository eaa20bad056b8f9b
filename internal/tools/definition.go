package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool indicates a tool name absent from the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMissingParameter indicates a required parameter was not supplied.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrInvalidArguments indicates arguments that fail schema validation.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrPastDateTime indicates a requested instant earlier than now.
	ErrPastDateTime = errors.New("cannot schedule in the past")

	// ErrInvalidRange indicates an end date earlier than the start date.
	ErrInvalidRange = errors.New("end date cannot be before start date")
)

// Handler executes one tool against the booking services. The returned
// payload must be JSON-marshalable.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Definition describes one tool: its name, what it does, and the JSON
// Schema of its parameters.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ParameterSchema is a JSON Schema object node. Required preserves
// declaration order, which fixes the order missing-parameter errors are
// reported in.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema describes a single parameter.
type PropertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *int     `json:"minimum,omitempty"`
	Maximum     *int     `json:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Result is the outcome of one dispatch call.
type Result struct {
	Tool      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Success   bool           `json:"success"`
	Payload   any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`

	// Err carries the underlying error for errors.Is classification by
	// direct API callers. Conversational callers only see Error.
	Err error `json:"-"`
}

// PayloadJSON renders the payload (or error detail) as the JSON string fed
// back to the conversational model as a tool turn.
func (r Result) PayloadJSON() string {
	if !r.Success {
		detail, _ := json.Marshal(map[string]string{"error": r.Error, "status": "error"})
		return string(detail)
	}
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return fmt.Sprintf(`{"error":%q,"status":"error"}`, err.Error())
	}
	return string(payload)
}

// schemaJSON marshals the parameter schema for validators and transports.
func (d Definition) schemaJSON() json.RawMessage {
	raw, err := json.Marshal(d.Parameters)
	if err != nil {
		// Parameters contain only marshalable literals; reaching this means
		// a malformed catalog entry.
		panic(fmt.Sprintf("tool %s: unmarshalable schema: %v", d.Name, err))
	}
	return raw
}

func intPtr(v int) *int { return &v }
