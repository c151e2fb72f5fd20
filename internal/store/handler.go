package store

import (
	"net/http"

	"github.com/motorlot/dealerd/internal/transport"
	"github.com/motorlot/dealerd/pkg/logger"
)

// Handler exposes the sandbox-mode switch. Entering twice or exiting
// twice is benign; the response's "changed" field tells the caller
// whether anything actually happened.
type Handler struct {
	*transport.BaseHandler
	Manager *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Manager:     m,
	}
}

type modeResponse struct {
	Mode    string `json:"mode"`
	Changed bool   `json:"changed"`
}

func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Manager.EnterSandbox()
	if err != nil {
		h.Logger.Error("failed to enter sandbox mode", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to enter sandbox mode")
		return
	}

	h.WriteJSON(w, http.StatusOK, modeResponse{Mode: h.Manager.Mode().String(), Changed: changed})
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Manager.ExitSandbox()
	if err != nil {
		h.Logger.Error("failed to exit sandbox mode", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to exit sandbox mode")
		return
	}

	h.WriteJSON(w, http.StatusOK, modeResponse{Mode: h.Manager.Mode().String(), Changed: changed})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"mode":    h.Manager.Mode().String(),
		"sandbox": h.Manager.IsSandbox(),
	})
}
