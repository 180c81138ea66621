// Package recommend asks a locally running Ollama instance for a short
// reflection on a month of wellbeing statistics. Any failure degrades to a
// static fallback message; callers never see an error.
package recommend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc"

	"daybook/config"
	"daybook/models"
)

// FallbackMessage is returned whenever the model is unreachable or answers
// with something unusable.
const FallbackMessage = "Keep focusing on your wellbeing and celebrate small wins."

// Result is the outcome of a recommendation request.
type Result struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Service generates recommendations through the Ollama generate API.
type Service struct {
	baseURL    string
	model      string
	httpClient *http.Client
	wg         conc.WaitGroup
}

// NewService builds a recommendation service from the Ollama settings.
func NewService(cfg config.OllamaSettings) *Service {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "mistral"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Service{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate produces a recommendation for the given month's statistics,
// falling back to the static message when the model call fails.
func (s *Service) Generate(ctx context.Context, stats models.MonthStats) Result {
	text, err := s.generate(ctx, BuildPrompt(stats))
	if err != nil {
		log.Printf("[recommend] model unavailable, using fallback: %v", err)
		return Result{Text: FallbackMessage, Fallback: true}
	}
	return Result{Text: text}
}

// GenerateAsync runs Generate on a worker goroutine and delivers the
// outcome on the returned channel. The channel is buffered, so a consumer
// that goes away simply leaves the result to be garbage collected; the
// worker never blocks on delivery.
func (s *Service) GenerateAsync(ctx context.Context, stats models.MonthStats) <-chan Result {
	out := make(chan Result, 1)
	s.wg.Go(func() {
		out <- s.Generate(ctx, stats)
		close(out)
	})
	return out
}

// Close waits for in-flight recommendation workers to finish.
func (s *Service) Close() {
	s.wg.Wait()
}

// BuildPrompt renders the monthly statistics into the model prompt.
func BuildPrompt(stats models.MonthStats) string {
	var b strings.Builder
	b.WriteString("Based on these diary stats:\n")
	fmt.Fprintf(&b, "- Average polarity: %.2f\n", stats.AvgPolarity)
	fmt.Fprintf(&b, "- Distribution: %d happy days, %d very happy days, compared to %d sad days and %d very sad days.\n",
		stats.HappyCount, stats.VeryHappyCount, stats.SadCount, stats.VerySadCount)
	if stats.HappiestDay != "" {
		fmt.Fprintf(&b, "- Happiest day: %s\n", stats.HappiestDay)
	}
	b.WriteString("\nPlease give the user a short, straight-forward paragraph that reflects the overall trend. ")
	b.WriteString("Celebrate positives if they dominate, but also mention one area to improve. ")
	b.WriteString("Limit to no more than 6 sentences.")
	return b.String()
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// generate calls the Ollama generate endpoint, concatenating the streamed
// response chunks. Transient failures are retried once before giving up.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	var output string

	err := retry.Do(
		func() error {
			text, err := s.generateOnce(ctx, prompt)
			if err != nil {
				return err
			}
			output = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return output, nil
}

func (s *Service) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: s.model, Prompt: prompt, Stream: true})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama returned status %s", resp.Status)
	}

	var b strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("decode ollama chunk: %w", err)
		}
		b.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read ollama stream: %w", err)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("empty response from ollama")
	}
	return text, nil
}
