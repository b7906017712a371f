package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"choresquest/internal/auth"
	"choresquest/internal/store"
)

const (
	minPINLength = 4
	maxPINLength = 8
)

type SettingsHandler struct {
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(settings *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger.With("component", "settings")}
}

// Get returns all of the parent's settings. The PIN hash never leaves the
// server; the response carries a pin_set flag instead.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetAll(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	_, pinSet := settings[store.SettingPINHash]
	delete(settings, store.SettingPINHash)

	writeJSON(w, http.StatusOK, map[string]any{
		"settings": settings,
		"pin_set":  pinSet,
	})
}

// Set stores the submitted key/value pairs. The PIN hash key is managed
// through the PIN endpoints and rejected here.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no settings provided")
		return
	}
	if _, ok := req[store.SettingPINHash]; ok {
		writeError(w, http.StatusBadRequest, "use the PIN endpoints to manage the PIN")
		return
	}

	parentID := auth.UserID(r.Context())
	for key, value := range req {
		if err := h.settings.Set(parentID, key, value); err != nil {
			h.logger.Error("set setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// SetPIN sets or changes the parent-area PIN. Changing an existing PIN
// requires the current one.
func (h *SettingsHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPIN string `json:"current_pin"`
		NewPIN     string `json:"new_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.NewPIN) < minPINLength || len(req.NewPIN) > maxPINLength {
		writeError(w, http.StatusBadRequest, "PIN must be 4 to 8 characters")
		return
	}

	parentID := auth.UserID(r.Context())
	existing, err := h.settings.Get(parentID, store.SettingPINHash)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	if existing != "" && !auth.CheckPassword(existing, req.CurrentPIN) {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}

	hash, err := auth.HashPassword(req.NewPIN)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	if err := h.settings.Set(parentID, store.SettingPINHash, hash); err != nil {
		h.logger.Error("save pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

// VerifyPIN checks the PIN guarding the parent area on a shared device.
func (h *SettingsHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.settings.Get(auth.UserID(r.Context()), store.SettingPINHash)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify PIN")
		return
	}
	if hash == "" {
		// No PIN configured: the parent area is open.
		writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
		return
	}
	if !auth.CheckPassword(hash, req.PIN) {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// ClearPIN removes the PIN after verifying the current one.
func (h *SettingsHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPIN string `json:"current_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	parentID := auth.UserID(r.Context())
	hash, err := h.settings.Get(parentID, store.SettingPINHash)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
		return
	}
	if !auth.CheckPassword(hash, req.CurrentPIN) {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}
	if err := h.settings.Delete(parentID, store.SettingPINHash); err != nil {
		h.logger.Error("delete pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}
