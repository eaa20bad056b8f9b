package server

import (
	"net/http"

	"github.com/kazhakuttam/bookingbot/internal/chat"
	"github.com/kazhakuttam/bookingbot/internal/logging"
	"github.com/kazhakuttam/bookingbot/internal/tools"
)

// apologyMessage is the degraded reply sent when a conversational turn
// fails outright. Tool failures inside a turn do not reach this path;
// the model explains those itself.
const apologyMessage = "I apologize, but I'm having trouble processing your request right now. Please try again in a moment."

type chatRequest struct {
	Message        string          `json:"message"`
	ConversationID string          `json:"conversationId"`
	ClientInfo     chat.ClientInfo `json:"clientInfo"`
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFunction struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Result     tools.Result   `json:"result"`
}

type chatData struct {
	Messages []chatTurn    `json:"messages"`
	Function *chatFunction `json:"function,omitempty"`
}

type chatResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Data    chatData `json:"data"`
}

type clearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleChatMessage processes one conversational turn. The response keeps
// the WhatsApp-webhook shape: assistant messages under data.messages and
// the first executed tool, if any, under data.function.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.Message == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "message is required"})
		return
	}

	reply, err := s.cfg.Chat.ProcessMessage(r.Context(), req.ConversationID, req.Message, req.ClientInfo)
	if err != nil {
		s.logger.Error("chat turn failed",
			logging.Conversation(req.ConversationID),
			logging.Err(err),
		)
		respondJSON(w, http.StatusInternalServerError, chatResponse{
			Error: err.Error(),
			Data: chatData{
				Messages: []chatTurn{{Role: "assistant", Content: apologyMessage}},
			},
		})
		return
	}

	resp := chatResponse{
		Success: true,
		Data: chatData{
			Messages: []chatTurn{{Role: "assistant", Content: reply.Message}},
		},
	}
	if len(reply.ToolCalls) > 0 {
		first := reply.ToolCalls[0]
		resp.Data.Function = &chatFunction{
			Name:       first.Name,
			Parameters: first.Arguments,
			Result:     first.Result,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleClearConversation drops the stored history for one conversation.
func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	s.cfg.Chat.ClearConversation(r.PathValue("id"))
	respondJSON(w, http.StatusOK, clearResponse{
		Success: true,
		Message: "Conversation history cleared",
	})
}
