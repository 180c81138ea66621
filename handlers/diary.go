package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"daybook/models"
	diarysvc "daybook/services/diary"
	"daybook/services/sentiment"
)

type diaryService interface {
	AddEntryWithSentiment(ctx context.Context, userID int64, text string, ts time.Time, level models.WellbeingLevel, polarity float64) (int64, error)
	Entries(ctx context.Context, userID int64) ([]models.DiaryEntry, error)
}

var _ diaryService = (*diarysvc.Service)(nil)

// DiaryHandler serves entry submission and listing.
type DiaryHandler struct {
	Service diaryService

	// now is swappable in tests.
	now func() time.Time
}

func NewDiaryHandler(s diaryService) *DiaryHandler {
	return &DiaryHandler{Service: s, now: time.Now}
}

type submitEntryRequest struct {
	Text string `json:"text"`
}

type submitEntryResponse struct {
	ID             int64                 `json:"id"`
	WellbeingLevel models.WellbeingLevel `json:"wellbeingLevel"`
	Polarity       float64               `json:"polarity"`
}

// Submit classifies the entry text and stores today's diary entry.
func (h *DiaryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	var req submitEntryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "diary entry cannot be empty")
		return
	}

	level, polarity := sentiment.Classify(text)

	id, err := h.Service.AddEntryWithSentiment(r.Context(), userID, text, h.now(), level, polarity)
	if err != nil {
		switch {
		case errors.Is(err, diarysvc.ErrDuplicateEntry):
			writeError(w, http.StatusConflict, "you already wrote a diary entry today, only one per day allowed")
		case errors.Is(err, diarysvc.ErrEmptyEntry):
			writeError(w, http.StatusBadRequest, "diary entry cannot be empty")
		default:
			log.Printf("[diary] submit failed: %v", err)
			writeError(w, http.StatusInternalServerError, "could not save diary entry")
		}
		return
	}

	writeJSON(w, http.StatusCreated, submitEntryResponse{ID: id, WellbeingLevel: level, Polarity: polarity})
}

// List returns the user's entries, newest first.
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	entries, err := h.Service.Entries(r.Context(), userID)
	if err != nil {
		log.Printf("[diary] list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load diary entries")
		return
	}
	if entries == nil {
		entries = []models.DiaryEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
