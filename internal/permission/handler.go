package permission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/motorlot/dealerd/internal"
	"github.com/motorlot/dealerd/internal/transport"
	"github.com/motorlot/dealerd/internal/user"
	"github.com/motorlot/dealerd/pkg/logger"
)

type ServiceAPI interface {
	Load(userID int64, defaultVal bool) (Set, error)
	Replace(userID int64, desired map[string]bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	set, err := h.Service.Load(userID, false)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, set.Map())
}

// Replace swaps out the target user's entire permission set. Admin-only.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok || user.Role(actor.RoleID) != user.RoleAdmin {
		h.WriteAppError(w, internal.ErrAdminOnly)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var desired map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&desired); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Replace(userID, desired); err != nil {
		h.WriteAppError(w, err)
		return
	}

	set, err := h.Service.Load(userID, false)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to reload permissions")
		return
	}

	// Changes land in the store immediately, but any principal issued
	// before this call still carries the old snapshot until re-login.
	h.WriteJSON(w, http.StatusOK, set.Map())
}
