package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatrelay/chatrelay-backend/internal/httperr"
	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/services"
	"github.com/chatrelay/chatrelay-backend/pkg/httputil"
)

// ThreadHandlers serves the thread listing, creation, rename and history
// endpoints.
type ThreadHandlers struct {
	threads *services.ThreadService
}

func NewThreadHandlers(threads *services.ThreadService) *ThreadHandlers {
	return &ThreadHandlers{threads: threads}
}

// respondServiceError logs the full error server-side and writes the uniform
// failure envelope with the status carried by the error's kind.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("ERROR [%s %s] %v", r.Method, r.URL.Path, err)
	httputil.RespondError(w, httperr.StatusFor(err), httperr.MessageFor(err))
}

// HandleListThreads handles GET /api/threads?anonUserId=...
func (h *ThreadHandlers) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	anonUserID := r.URL.Query().Get("anonUserId")

	threads, err := h.threads.ListThreads(r.Context(), anonUserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.ListThreadsResponse{OK: true, Threads: threads})
}

// HandleCreateThread handles POST /api/threads.
func (h *ThreadHandlers) HandleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req models.CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threadID, err := h.threads.CreateThread(r.Context(), req.AnonUserID, req.Title)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.CreateThreadResponse{OK: true, ThreadID: threadID})
}

// HandleRenameThread handles PATCH /api/threads/{threadID}.
func (h *ThreadHandlers) HandleRenameThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	var req models.RenameThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.threads.RenameThread(r.Context(), req.AnonUserID, threadID, req.Title); err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

// HandleGetHistory handles GET /api/history?anonUserId=...&threadId=...
func (h *ThreadHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	messages, err := h.threads.GetHistory(r.Context(), q.Get("anonUserId"), q.Get("threadId"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.HistoryResponse{OK: true, Messages: messages})
}
