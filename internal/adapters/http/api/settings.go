package api

import (
	"net/http"

	service "github.com/Sajal133/truerate-api/internal/app"
)

// SettingsProvider exposes the public analysis configuration.
type SettingsProvider interface {
	Settings() service.Settings
}

// SettingsHandler handles GET /config requests.
type SettingsHandler struct {
	provider SettingsProvider
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(p SettingsProvider) *SettingsHandler {
	return &SettingsHandler{provider: p}
}

// HandleSettings writes the current settings.
func (h *SettingsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.Settings())
}
