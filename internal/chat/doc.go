// Package chat drives multi-turn conversations with the completion
// service: it sends conversation state plus the tool catalog, executes any
// requested tool calls through the dispatcher, feeds the results back, and
// returns the model's final natural-language reply.
//
// Conversation history lives in an in-process store only; it does not
// survive a restart and is not shared between replicas.
package chat
