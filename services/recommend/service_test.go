package recommend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daybook/config"
	"daybook/models"
	"daybook/services/recommend"
)

func newService(baseURL string) *recommend.Service {
	return recommend.NewService(config.OllamaSettings{
		BaseURL:        baseURL,
		Model:          "mistral",
		TimeoutSeconds: 5,
	})
}

func TestGenerateConcatenatesStreamedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"response":"Keep "}` + "\n"))
		w.Write([]byte(`{"response":"going."}` + "\n"))
		w.Write([]byte(`{"response":"","done":true}` + "\n"))
	}))
	defer server.Close()

	svc := newService(server.URL)
	defer svc.Close()

	result := svc.Generate(context.Background(), models.MonthStats{})
	if result.Fallback {
		t.Fatalf("expected model result, got fallback")
	}
	if result.Text != "Keep going." {
		t.Fatalf("text = %q, want concatenated chunks", result.Text)
	}
}

func TestGenerateFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newService(server.URL)
	defer svc.Close()

	result := svc.Generate(context.Background(), models.MonthStats{})
	if !result.Fallback {
		t.Fatalf("expected fallback result")
	}
	if result.Text != recommend.FallbackMessage {
		t.Fatalf("text = %q, want fallback message", result.Text)
	}
}

func TestGenerateFallsBackWhenUnreachable(t *testing.T) {
	// Nothing listens on this port.
	svc := newService("http://127.0.0.1:1")
	defer svc.Close()

	result := svc.Generate(context.Background(), models.MonthStats{})
	if !result.Fallback || result.Text != recommend.FallbackMessage {
		t.Fatalf("expected fallback, got %+v", result)
	}
}

func TestGenerateAsyncDeliversOnChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"All good.","done":true}` + "\n"))
	}))
	defer server.Close()

	svc := newService(server.URL)
	defer svc.Close()

	select {
	case result := <-svc.GenerateAsync(context.Background(), models.MonthStats{}):
		if result.Text != "All good." || result.Fallback {
			t.Fatalf("unexpected result %+v", result)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for async result")
	}
}

func TestBuildPromptIncludesStats(t *testing.T) {
	prompt := recommend.BuildPrompt(models.MonthStats{
		HappyCount:     4,
		VeryHappyCount: 2,
		SadCount:       1,
		VerySadCount:   0,
		AvgPolarity:    0.35,
		HappiestDay:    "2025-09-14 08:00:00",
	})

	for _, want := range []string{"0.35", "4 happy days", "2 very happy days", "1 sad days", "2025-09-14 08:00:00"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptOmitsHappiestDayWhenEmpty(t *testing.T) {
	prompt := recommend.BuildPrompt(models.MonthStats{})
	if strings.Contains(prompt, "Happiest day") {
		t.Fatalf("prompt should omit happiest day when none exists:\n%s", prompt)
	}
}
