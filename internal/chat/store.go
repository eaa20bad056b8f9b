package chat

import (
	"sync"

	"github.com/openai/openai-go"
)

// Store keeps per-conversation turn history. It is created at startup and
// injected into the Service, so tests can use isolated instances.
//
// Known limitations, deliberate for this layer: history is process-local
// (no cross-process durability) and grows without bound for long
// conversations; Clear is the only trim mechanism.
type Store struct {
	mu            sync.Mutex
	conversations map[string][]openai.ChatCompletionMessageParamUnion
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string][]openai.ChatCompletionMessageParamUnion),
	}
}

// History returns a copy of the conversation's turns in order. A new
// conversation has empty history.
func (s *Store) History(id string) []openai.ChatCompletionMessageParamUnion {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.conversations[id]
	out := make([]openai.ChatCompletionMessageParamUnion, len(turns))
	copy(out, turns)
	return out
}

// Append adds turns to the conversation, creating it on first use.
func (s *Store) Append(id string, turns ...openai.ChatCompletionMessageParamUnion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = append(s.conversations[id], turns...)
}

// Clear removes a conversation's history entirely.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}

// Len reports the number of stored turns for a conversation.
func (s *Store) Len(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations[id])
}
