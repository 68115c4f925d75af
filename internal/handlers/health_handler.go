package handlers

import (
	"net/http"
	"time"

	"github.com/chatrelay/chatrelay-backend/internal/models"
	"github.com/chatrelay/chatrelay-backend/internal/store"
	"github.com/chatrelay/chatrelay-backend/pkg/httputil"
)

// HealthHandler reports backend identity and reachability.
type HealthHandler struct {
	store   store.Store
	started time.Time
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st, started: time.Now()}
}

// HandleHealth handles GET /api/health. An unreachable backend is reported
// in the body but keeps the 200 status; the process itself is still serving.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.store.HealthCheck(r.Context())
	httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{
		OK:        true,
		DB:        st.Reachable,
		Kind:      st.Kind,
		UptimeSec: int64(time.Since(h.started).Seconds()),
	})
}
