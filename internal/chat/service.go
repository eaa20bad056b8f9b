package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kazhakuttam/bookingbot/internal/logging"
	"github.com/kazhakuttam/bookingbot/internal/tools"
)

// Completer is the slice of the OpenAI client the service uses. The real
// implementation is client.Chat.Completions.
type Completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Dispatcher executes tool invocations and exports the catalog.
// Satisfied by tools.Registry.
type Dispatcher interface {
	Execute(ctx context.Context, name string, args map[string]any) tools.Result
	OpenAITools() []openai.ChatCompletionToolParam
}

// CompletionRecorder receives per-completion metrics. Satisfied by
// instrumentation.Metrics; nil disables recording.
type CompletionRecorder interface {
	RecordChatCompletion(ctx context.Context, status string, duration time.Duration)
}

// Config tunes the completion requests.
type Config struct {
	// Model is the completion model identifier.
	Model string
	// BusinessID fills the {{businessId}} prompt placeholder.
	BusinessID string
	// Temperature and MaxTokens mirror the completion API knobs.
	Temperature float64
	MaxTokens   int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4-turbo-preview",
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// ToolCallSummary reports one executed tool to the API caller.
type ToolCallSummary struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    tools.Result   `json:"result"`
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	Message   string            `json:"message"`
	ToolCalls []ToolCallSummary `json:"functionCalls,omitempty"`
}

// Service is the dialogue orchestrator.
type Service struct {
	completions Completer
	dispatcher  Dispatcher
	store       *Store
	logger      *slog.Logger
	cfg         Config
	metrics     CompletionRecorder
	now         func() time.Time
}

// NewService wires the orchestrator. store must not be shared with another
// Service unless both serve the same conversation namespace.
func NewService(completions Completer, dispatcher Dispatcher, store *Store, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	return &Service{
		completions: completions,
		dispatcher:  dispatcher,
		store:       store,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetClock overrides the time source used for prompt instantiation.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetMetrics attaches a completion recorder.
func (s *Service) SetMetrics(m CompletionRecorder) {
	s.metrics = m
}

// ClearConversation drops a conversation's history.
func (s *Service) ClearConversation(id string) {
	s.store.Clear(id)
	s.logger.Info("conversation cleared", logging.Conversation(id))
}

// ProcessMessage runs one conversational turn: completion, optional tool
// fan-out, and the follow-up completion for the final reply. A failed tool
// never aborts the turn; its error travels back to the model as a tool
// result so it can be explained in natural language.
func (s *Service) ProcessMessage(ctx context.Context, conversationID, message string, client ClientInfo) (*Reply, error) {
	if message == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}

	userTurn := openai.UserMessage(message)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemMessage(client, s.cfg.BusinessID, s.now())),
	}
	messages = append(messages, s.store.History(conversationID)...)
	messages = append(messages, userTurn)

	first, err := s.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.cfg.Model),
		Messages:    messages,
		Tools:       s.dispatcher.OpenAITools(),
		Temperature: openai.Float(s.cfg.Temperature),
		MaxTokens:   openai.Int(s.cfg.MaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	assistant := first.Choices[0].Message
	if len(assistant.ToolCalls) == 0 {
		s.store.Append(conversationID, userTurn, openai.AssistantMessage(assistant.Content))
		return &Reply{Message: assistant.Content}, nil
	}

	results := s.executeToolCalls(ctx, conversationID, assistant.ToolCalls)

	// Feed the original tool-requesting turn plus each result turn back
	// for the final natural-language reply.
	messages = append(messages, assistant.ToParam())
	newTurns := []openai.ChatCompletionMessageParamUnion{userTurn, assistant.ToParam()}
	summaries := make([]ToolCallSummary, len(results))
	for i, result := range results {
		toolTurn := openai.ToolMessage(result.PayloadJSON(), assistant.ToolCalls[i].ID)
		messages = append(messages, toolTurn)
		newTurns = append(newTurns, toolTurn)
		summaries[i] = ToolCallSummary{
			Name:      result.Tool,
			Arguments: result.Arguments,
			Result:    result,
		}
	}

	final, err := s.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.cfg.Model),
		Messages:    messages,
		Temperature: openai.Float(s.cfg.Temperature),
		MaxTokens:   openai.Int(s.cfg.MaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	reply := final.Choices[0].Message.Content
	newTurns = append(newTurns, openai.AssistantMessage(reply))
	s.store.Append(conversationID, newTurns...)

	return &Reply{Message: reply, ToolCalls: summaries}, nil
}

// executeToolCalls runs the requested invocations concurrently; the calls
// within one turn are independent of each other. Results keep request
// order regardless of completion order.
func (s *Service) executeToolCalls(ctx context.Context, conversationID string, calls []openai.ChatCompletionMessageToolCall) []tools.Result {
	results := make([]tools.Result, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call openai.ChatCompletionMessageToolCall) {
			defer wg.Done()

			var args map[string]any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				results[i] = tools.Result{
					Tool:  call.Function.Name,
					Error: fmt.Sprintf("invalid tool arguments: %v", err),
				}
				return
			}
			results[i] = s.dispatcher.Execute(ctx, call.Function.Name, args)
		}(i, call)
	}
	wg.Wait()

	for _, result := range results {
		status := logging.StatusSuccess
		if !result.Success {
			status = logging.StatusError
		}
		s.logger.Debug("tool call completed",
			logging.Conversation(conversationID),
			logging.Tool(result.Tool),
			logging.Status(status),
		)
	}
	return results
}

func (s *Service) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	start := time.Now()
	completion, err := s.completions.New(ctx, params)
	if s.metrics != nil {
		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
		}
		s.metrics.RecordChatCompletion(ctx, status, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}
	return completion, nil
}
