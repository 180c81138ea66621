package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"daybook/models"
	settingssvc "daybook/services/settings"
)

type settingsService interface {
	TimerLength(ctx context.Context, userID int64) (int, error)
	SetTimerLength(ctx context.Context, userID int64, seconds int) error
}

var _ settingsService = (*settingssvc.Service)(nil)

// SettingsHandler serves the per-user session timer configuration.
type SettingsHandler struct {
	Service settingsService
}

func NewSettingsHandler(s settingsService) *SettingsHandler {
	return &SettingsHandler{Service: s}
}

type timerResponse struct {
	Seconds int `json:"seconds"`
}

// GetTimer returns the user's session timer length.
func (h *SettingsHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	seconds, err := h.Service.TimerLength(r.Context(), userID)
	if err != nil {
		log.Printf("[settings] get timer failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}

	writeJSON(w, http.StatusOK, timerResponse{Seconds: seconds})
}

// SetTimer validates and stores a new session timer length.
func (h *SettingsHandler) SetTimer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	var req timerResponse
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.SetTimerLength(r.Context(), userID, req.Seconds); err != nil {
		if errors.Is(err, settingssvc.ErrTimerOutOfRange) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("session length must be between %d and %d seconds", models.MinTimerLength, models.MaxTimerLength))
			return
		}
		log.Printf("[settings] set timer failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not update settings")
		return
	}

	writeJSON(w, http.StatusOK, timerResponse{Seconds: req.Seconds})
}
