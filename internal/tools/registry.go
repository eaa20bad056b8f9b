package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kazhakuttam/bookingbot/internal/logging"
)

// ToolRecorder receives per-invocation metrics. Satisfied by
// instrumentation.Metrics; nil disables recording.
type ToolRecorder interface {
	RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration)
}

type registered struct {
	def     Definition
	handler Handler
	schema  *gojsonschema.Schema
}

// Registry is the tool dispatcher: an immutable catalog with one bound
// handler per tool.
type Registry struct {
	order   []string
	entries map[string]registered
	logger  *slog.Logger
	metrics ToolRecorder
}

// NewRegistry binds the catalog to the given handlers and compiles every
// parameter schema. A catalog entry without a handler (or vice versa) is a
// configuration error reported at startup, not at dispatch time.
func NewRegistry(h *Handlers, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	handlers := h.byName()
	r := &Registry{
		entries: make(map[string]registered),
		logger:  logger,
	}

	for _, def := range Catalog() {
		handler, ok := handlers[def.Name]
		if !ok {
			return nil, fmt.Errorf("tool %s declared in catalog but has no handler", def.Name)
		}
		delete(handlers, def.Name)

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(def.schemaJSON()))
		if err != nil {
			return nil, fmt.Errorf("tool %s: failed to compile parameter schema: %w", def.Name, err)
		}

		r.order = append(r.order, def.Name)
		r.entries[def.Name] = registered{def: def, handler: handler, schema: schema}
	}

	for name := range handlers {
		return nil, fmt.Errorf("handler %s has no catalog entry", name)
	}

	return r, nil
}

// SetMetrics attaches an invocation recorder.
func (r *Registry) SetMetrics(m ToolRecorder) {
	r.metrics = m
}

// Definitions returns the catalog in declaration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].def)
	}
	return defs
}

// Execute validates and runs one tool invocation. It never returns an
// error: every failure, including handler panics' moral equivalents, is
// folded into a Result marked failed so conversational callers can relay it.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	start := time.Now()
	result := r.execute(ctx, name, args)
	elapsed := time.Since(start)

	status := logging.StatusSuccess
	if !result.Success {
		status = logging.StatusError
	}
	if r.metrics != nil {
		r.metrics.RecordToolInvocation(ctx, name, status, elapsed)
	}
	r.logger.Info("tool executed",
		logging.Tool(name),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, elapsed),
	)

	return result
}

func (r *Registry) execute(ctx context.Context, name string, args map[string]any) Result {
	if args == nil {
		args = map[string]any{}
	}
	result := Result{Tool: name, Arguments: args}

	entry, ok := r.entries[name]
	if !ok {
		result.Err = fmt.Errorf("%w: %s", ErrUnknownTool, name)
		result.Error = result.Err.Error()
		return result
	}

	// Required parameters are reported in declaration order, first missing
	// one wins. Empty strings count as missing, matching what models send
	// when they have nothing to say.
	for _, req := range entry.def.Parameters.Required {
		value, present := args[req]
		if !present || value == nil || value == "" {
			result.Err = fmt.Errorf("%w: %s", ErrMissingParameter, req)
			result.Error = result.Err.Error()
			return result
		}
	}

	if err := r.validateArgs(entry, args); err != nil {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	payload, err := entry.handler(ctx, args)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Payload = payload
	return result
}

// validateArgs enforces the declared patterns, enums and bounds. The
// schemas are contract for callers, not just documentation.
func (r *Registry) validateArgs(entry registered, args map[string]any) error {
	res, err := entry.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, verr := range res.Errors() {
			details = append(details, verr.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(details, "; "))
	}
	return nil
}
