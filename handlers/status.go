package handlers

import (
	"encoding/json"
	"net/http"
)

// StatusHandlers answers health probes.
type StatusHandlers struct {
	container *Container
}

// NewStatusHandlers creates a new StatusHandlers instance.
func NewStatusHandlers(container *Container) *StatusHandlers {
	return &StatusHandlers{container: container}
}

type healthResponse struct {
	Status  string `json:"status"`
	Distros int    `json:"distros"`
}

// Healthz reports whether the root directory is readable. A root that
// cannot be listed degrades the service to unavailable.
func (h *StatusHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	distros, err := h.container.Registry.List(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(healthResponse{Status: "unavailable"})
		return
	}

	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Distros: len(distros),
	})
}
