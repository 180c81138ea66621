package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"daybook/models"
	"daybook/services/recommend"
	summarysvc "daybook/services/summary"
)

type monthEntrySource interface {
	EntriesForMonth(ctx context.Context, userID int64, year, month int) ([]models.DiaryEntry, error)
}

type summaryService interface {
	ListAll(ctx context.Context, userID int64) ([]models.MonthlySummary, error)
	GenerateAll(ctx context.Context, userID int64) error
}

type recommender interface {
	GenerateAsync(ctx context.Context, stats models.MonthStats) <-chan recommend.Result
}

var _ summaryService = (*summarysvc.Service)(nil)

// SummaryHandler serves monthly statistics and the optional AI
// recommendation derived from them.
type SummaryHandler struct {
	Entries     monthEntrySource
	Service     summaryService
	Recommender recommender

	now func() time.Time
}

func NewSummaryHandler(entries monthEntrySource, service summaryService, recommender recommender) *SummaryHandler {
	return &SummaryHandler{Entries: entries, Service: service, Recommender: recommender, now: time.Now}
}

// monthFromQuery reads year/month query parameters, defaulting to the
// current month.
func (h *SummaryHandler) monthFromQuery(r *http.Request) (int, int, error) {
	now := h.now()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = parsed
	}
	return year, month, nil
}

type monthSummaryResponse struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Stats models.MonthStats `json:"stats"`
}

// Month computes the statistics for one month from the raw entries.
func (h *SummaryHandler) Month(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	year, month, err := h.monthFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Entries.EntriesForMonth(r.Context(), userID, year, month)
	if err != nil {
		log.Printf("[summary] load month entries failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load diary entries")
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no diary entries found for %04d-%02d", year, month))
		return
	}

	stats := summarysvc.ComputeMonthStats(entries)
	writeJSON(w, http.StatusOK, monthSummaryResponse{Year: year, Month: month, Stats: stats})
}

// ListAll returns every stored monthly summary, most recent first.
func (h *SummaryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	summaries, err := h.Service.ListAll(r.Context(), userID)
	if err != nil {
		log.Printf("[summary] list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load summaries")
		return
	}
	if summaries == nil {
		summaries = []models.MonthlySummary{}
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Generate recomputes and stores summaries for every month with entries.
func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	if err := h.Service.GenerateAll(r.Context(), userID); err != nil {
		log.Printf("[summary] generate failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not generate summaries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Recommendation asks the local model for a short reflection on the
// month's statistics. The worker runs off the request goroutine; if the
// client goes away first, the result is discarded.
func (h *SummaryHandler) Recommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active user session")
		return
	}

	year, month, err := h.monthFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Entries.EntriesForMonth(r.Context(), userID, year, month)
	if err != nil {
		log.Printf("[summary] load month entries failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load diary entries")
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no diary entries found for %04d-%02d", year, month))
		return
	}

	stats := summarysvc.ComputeMonthStats(entries)

	select {
	case result := <-h.Recommender.GenerateAsync(r.Context(), stats):
		writeJSON(w, http.StatusOK, result)
	case <-r.Context().Done():
		// Client disconnected; the worker's buffered channel absorbs the
		// late result.
	}
}
