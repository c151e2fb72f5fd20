package rest

import (
	"encoding/json"
	"net/http"

	"github.com/motorlot/dealerd/internal/store"
)

type HealthHandler struct {
	db *store.Handle
}

func NewHealthHandler(db *store.Handle) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	row := h.db.QueryRow(`SELECT 1`)
	var one int
	if err := row.Scan(&one); err != nil {
		status = "store unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
