package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/motorlot/dealerd/internal"
	"github.com/motorlot/dealerd/internal/transport"
	"github.com/motorlot/dealerd/pkg/logger"
)

type ServiceAPI interface {
	Create(actor Role, dto CreateUserDTO) (*CreatedUser, error)
	ResetPassword(actor Role, username, newPassword string) (string, error)
	ToggleActive(actor Role, username string) (bool, error)
	List(actor Role) ([]*User, error)
	ResetRequests(actor Role) ([]ResetRequest, error)
	SalesHistory() ([]SaleRecord, error)
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

func actorRole(r *http.Request) (Role, bool) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return Role(actor.RoleID), true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorRole(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(actor, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorRole(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.List(actor)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorRole(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newPassword, err := h.Service.ResetPassword(actor, chi.URLParam(r, "username"), dto.NewPassword)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	// The admin shares the new password with the user manually.
	h.WriteJSON(w, http.StatusOK, map[string]string{"new_password": newPassword})
}

func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorRole(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	active, err := h.Service.ToggleActive(actor, chi.URLParam(r, "username"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

func (h *Handler) ResetRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorRole(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Service.ResetRequests(actor)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) SalesHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.SalesHistory()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}
