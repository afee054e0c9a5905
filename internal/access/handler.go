package access

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

// Decide handles an access attempt from a device or gateway. The route
// is unauthenticated: readers in the field do not carry user tokens.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	var dto DecideAccessDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := h.Service.DecideAccess(dto, time.Now())
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, decision)
}

func (h *Handler) DepartmentHistory(w http.ResponseWriter, r *http.Request) {
	departmentID, err := strconv.ParseInt(chi.URLParam(r, "departmentID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	history, err := h.Service.DepartmentHistory(departmentID, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, history)
}

func (h *Handler) Telemetry(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Telemetry())
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	if _, ok := err.(auth.ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.HandleServiceError(w, err)
}
