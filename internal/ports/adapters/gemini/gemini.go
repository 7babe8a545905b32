// Package gemini implements the cut-profile generator port against the
// Gemini REST API. A Mock variant answers with a canned profile so the
// pipeline works without credentials.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"clipstudio/internal/domain/cutprofile"
	"clipstudio/internal/ports"
)

const requestTimeout = 90 * time.Second

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "gemini-pro"
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Minute}}
}

func (a *Adapter) Generate(ctx context.Context, videoName, transcript string) (cutprofile.Profile, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": buildPrompt(videoName, transcript)}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return cutprofile.Profile{}, fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/v1beta/models/" + a.model + ":generateContent"

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return cutprofile.Profile{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return cutprofile.Profile{}, fmt.Errorf("gemini: %w: timeout after %s (model=%s)", ports.ErrExternalTool, requestTimeout, a.model)
		}
		return cutprofile.Profile{}, fmt.Errorf("gemini: %w: %v", ports.ErrExternalTool, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return cutprofile.Profile{}, fmt.Errorf("gemini: %w: status %d and read body failed: %v", ports.ErrExternalTool, resp.StatusCode, readErr)
		}
		return cutprofile.Profile{}, fmt.Errorf("gemini: %w: status %d: %s", ports.ErrExternalTool, resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return cutprofile.Profile{}, fmt.Errorf("gemini: %w: decode response: %v", ports.ErrExternalTool, err)
	}
	if len(raw.Candidates) == 0 {
		return cutprofile.Profile{}, fmt.Errorf("gemini: %w: no candidates in response", ports.ErrExternalTool)
	}

	var b strings.Builder
	for _, p := range raw.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	clean, err := extractJSONObject(b.String())
	if err != nil {
		return cutprofile.Profile{}, fmt.Errorf("gemini: %w: %v", ports.ErrExternalTool, err)
	}

	profile, err := cutprofile.Decode([]byte(clean))
	if err != nil {
		return cutprofile.Profile{}, fmt.Errorf("gemini: %w: profile JSON: %v", ports.ErrExternalTool, err)
	}
	return profile, nil
}

// Mock answers every request with the same plausible profile. It stands in
// for the real API during local work and in tests.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (*Mock) Generate(_ context.Context, _, _ string) (cutprofile.Profile, error) {
	return cutprofile.Profile{
		Segments: []cutprofile.ProfileSegment{
			{StartTime: 0.0, EndTime: 45.3, Reason: "Strong opening hook and introduction of main topic"},
			{StartTime: 62.1, EndTime: 125.7, Reason: "Key explanation of core concept with good energy"},
			{StartTime: 140.5, EndTime: 210.2, Reason: "Important demonstration with clear visual elements"},
			{StartTime: 250.8, EndTime: 320.4, Reason: "Compelling conclusion and call to action"},
		},
		EstimatedDuration: 248.2,
		Notes:             "Cut removes redundant explanations and several awkward pauses. Maintains narrative flow while improving pacing.",
	}, nil
}

func buildPrompt(videoName, transcript string) string {
	return "You are a professional video editor. Based on the following transcript of " +
		videoName + ", create a cut profile for the video. Identify natural breaks, " +
		"redundant content, and awkward pauses that should be removed. " +
		"Respond with strictly valid JSON containing: an array \"segments\", each with " +
		"start_time and end_time in seconds and a reason field explaining why this part " +
		"should be kept; an \"estimated_duration\" for the final video; and free-form \"notes\"." +
		"\n\nTranscript:\n" + transcript
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	// Best-effort: take the first JSON object found.
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}

	return "", fmt.Errorf("could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	googHeaderRE  = regexp.MustCompile(`(?i)(x-goog-api-key\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;&]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = googHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
