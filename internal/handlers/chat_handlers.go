package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/services"
	"github.com/chatrelay/chatrelay-backend/pkg/httputil"
)

// ChatHandlers serves the chat endpoint.
type ChatHandlers struct {
	chat *services.ChatService
}

func NewChatHandlers(chat *services.ChatService) *ChatHandlers {
	return &ChatHandlers{chat: chat}
}

// HandleChat handles POST /api/chat.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chat.Exchange(r.Context(), req.AnonUserID, req.ThreadID, req.Text)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ChatResponse{OK: true, Reply: reply})
}
