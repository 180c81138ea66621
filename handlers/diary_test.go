package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daybook/models"
	diarysvc "daybook/services/diary"
)

type stubDiaryService struct {
	addErr   error
	addedID  int64
	lastText string
	lastTS   time.Time
	entries  []models.DiaryEntry
	listErr  error
}

func (s *stubDiaryService) AddEntryWithSentiment(ctx context.Context, userID int64, text string, ts time.Time, level models.WellbeingLevel, polarity float64) (int64, error) {
	s.lastText = text
	s.lastTS = ts
	if s.addErr != nil {
		return 0, s.addErr
	}
	return s.addedID, nil
}

func (s *stubDiaryService) Entries(ctx context.Context, userID int64) ([]models.DiaryEntry, error) {
	return s.entries, s.listErr
}

func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(context.WithValue(r.Context(), userIDKey, int64(1)))
}

func TestDiarySubmit(t *testing.T) {
	stub := &stubDiaryService{addedID: 7}
	h := NewDiaryHandler(stub)
	h.now = func() time.Time { return time.Date(2025, 9, 14, 8, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	h.Submit(w, authedRequest(http.MethodPost, "/api/diary/entries", `{"text":"I feel happy and grateful."}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp submitEntryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 7 {
		t.Errorf("expected entry id 7, got %d", resp.ID)
	}
	if resp.WellbeingLevel != models.LevelHappy {
		t.Errorf("expected level %q, got %q", models.LevelHappy, resp.WellbeingLevel)
	}
	if stub.lastText != "I feel happy and grateful." {
		t.Errorf("service got text %q", stub.lastText)
	}
	if !stub.lastTS.Equal(time.Date(2025, 9, 14, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("service got timestamp %v", stub.lastTS)
	}
}

func TestDiarySubmitEmptyText(t *testing.T) {
	h := NewDiaryHandler(&stubDiaryService{})

	w := httptest.NewRecorder()
	h.Submit(w, authedRequest(http.MethodPost, "/api/diary/entries", `{"text":"   "}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestDiarySubmitDuplicateDay(t *testing.T) {
	h := NewDiaryHandler(&stubDiaryService{addErr: diarysvc.ErrDuplicateEntry})

	w := httptest.NewRecorder()
	h.Submit(w, authedRequest(http.MethodPost, "/api/diary/entries", `{"text":"second entry"}`))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "only one per day") {
		t.Errorf("unexpected error body: %s", w.Body.String())
	}
}

func TestDiarySubmitRequiresSession(t *testing.T) {
	h := NewDiaryHandler(&stubDiaryService{})

	w := httptest.NewRecorder()
	h.Submit(w, httptest.NewRequest(http.MethodPost, "/api/diary/entries", strings.NewReader(`{"text":"hi"}`)))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestDiaryListEmpty(t *testing.T) {
	h := NewDiaryHandler(&stubDiaryService{})

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/diary/entries", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestDiaryList(t *testing.T) {
	pol := 0.5
	h := NewDiaryHandler(&stubDiaryService{entries: []models.DiaryEntry{
		{ID: 2, UserID: 1, Text: "later", Timestamp: "2025-09-15 09:00:00", Date: "2025-09-15", Level: models.LevelHappy, Polarity: &pol},
		{ID: 1, UserID: 1, Text: "earlier", Timestamp: "2025-09-14 09:00:00", Date: "2025-09-14"},
	}})

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/diary/entries", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var entries []models.DiaryEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 {
		t.Errorf("expected newest entry first, got id %d", entries[0].ID)
	}
}
