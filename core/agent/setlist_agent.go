package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// SetlistAgentConfig contains configuration for the setlist agent.
type SetlistAgentConfig struct {
	APIBaseURL  string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// SetlistAgent drives an OpenAI-compatible chat model to generate and
// refine DJ setlists. The model is instructed to reply with JSON only.
type SetlistAgent struct {
	config     *SetlistAgentConfig
	httpClient *http.Client
}

// System prompt for the setlist agent.
const SetlistAgentSystemPrompt = `You are an expert DJ and music curator with deep knowledge of electronic music, harmonic mixing, and crowd energy management.

Your job is to build DJ setlists. For every request, respond with ONLY a valid JSON object in exactly this format, with no prose before or after it:

{
  "playlists": [
    {
      "name": "playlist name",
      "description": "short description of the vibe and arc",
      "bpm_range": "120-128",
      "energy_progression": "how the energy moves across the set",
      "recommended_track_count": 10,
      "total_duration_estimate": "60 minutes",
      "genres": ["genre1", "genre2"],
      "key_characteristics": ["characteristic1", "characteristic2"],
      "tracks": [
        {
          "title": "track title",
          "artist": "artist name",
          "bpm": 124,
          "key": "8A",
          "energy": 7,
          "position": "opener",
          "reasoning": "why this track belongs here"
        }
      ],
      "transition_notes": "notes on mixing between tracks"
    }
  ]
}

Rules:
- "key" uses Camelot wheel notation (1A-12A minor, 1B-12B major).
- "energy" is an integer from 1 (ambient) to 10 (peak intensity).
- "position" is one of: opener, build, peak, transition, closer.
- Order tracks for harmonic compatibility and a coherent energy arc.
- Only recommend real, existing tracks.
- Respond with the JSON object alone. No markdown fences, no commentary.`

// NewSetlistAgent creates a new setlist agent.
func NewSetlistAgent(config *SetlistAgentConfig) *SetlistAgent {
	return &SetlistAgent{
		config: config,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// GenerateSetlist asks the model for fresh playlist candidates.
func (a *SetlistAgent) GenerateSetlist(ctx context.Context, query string, count, targetDurationMinutes int) ([]model.AIPlaylist, error) {
	if count <= 0 {
		count = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create %d playlist(s) for this brief: %s", count, query)
	if targetDurationMinutes > 0 {
		fmt.Fprintf(&b, "\nTarget set duration: about %d minutes.", targetDurationMinutes)
	}

	content, err := a.chat(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return parsePlaylists(content)
}

// RefineSetlist asks the model to rework the given playlists according
// to a natural-language instruction.
func (a *SetlistAgent) RefineSetlist(ctx context.Context, instruction string, current []model.AIPlaylist) ([]model.AIPlaylist, error) {
	currentJSON, err := json.Marshal(model.AIResponse{Playlists: current})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current playlists: %w", err)
	}

	var b strings.Builder
	b.WriteString("Here is the current setlist JSON:\n")
	b.Write(currentJSON)
	b.WriteString("\n\nApply this instruction and return the full updated JSON in the same format: ")
	b.WriteString(instruction)

	content, err := a.chat(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return parsePlaylists(content)
}

// chat sends one user message and returns the model's reply text.
func (a *SetlistAgent) chat(ctx context.Context, userMessage string) (string, error) {
	reqBody := model.ChatRequest{
		Model: a.config.Model,
		Messages: []model.ChatMessage{
			{Role: "system", Content: SetlistAgentSystemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.config.APIBaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	logger.Info("sending setlist chat request",
		logger.String("model", a.config.Model),
		logger.Int("maxTokens", a.config.MaxTokens))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp model.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// parsePlaylists extracts the playlists array from the model reply.
// Models wrap JSON in markdown fences often enough that it is stripped
// here rather than rejected.
func parsePlaylists(content string) ([]model.AIPlaylist, error) {
	cleaned := stripMarkdownFences(content)

	var response model.AIResponse
	if err := json.Unmarshal([]byte(cleaned), &response); err != nil {
		if looksTruncated(cleaned) {
			return nil, fmt.Errorf("model response appears truncated, try a lower track count: %w", err)
		}
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	if len(response.Playlists) == 0 {
		return nil, fmt.Errorf("model returned no playlists")
	}
	return response.Playlists, nil
}

// stripMarkdownFences removes a leading ```json (or bare ```) fence and
// the matching trailing fence.
func stripMarkdownFences(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// looksTruncated reports whether the JSON text was probably cut off by
// the token limit.
func looksTruncated(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && !strings.HasSuffix(s, "}")
}
