package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiDefaultModel   = "gemini-2.0-flash"
)

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	TopP            *float32 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *promptFeedback   `json:"promptFeedback,omitempty"`
	Error          *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// --- Client Implementation ---

type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewGeminiClient builds a client for the Google generative language
// REST API. Empty arguments fall back to GEMINI_API_KEY / GEMINI_MODEL,
// then to the secrets mount.
func NewGeminiClient(baseURL, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		secretPath := "/run/secrets/gemini_api_key"
		if content, err := os.ReadFile(secretPath); err == nil {
			apiKey = strings.TrimSpace(string(content))
			slog.Info("Read Gemini API Key from Podman Secrets")
		}
	}
	if apiKey == "" {
		slog.Warn("Gemini API Key is missing.")
		return nil, fmt.Errorf("GEMINI_API_KEY is missing")
	}

	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}
	if model == "" {
		model = geminiDefaultModel
		slog.Info("GEMINI_MODEL not set, defaulting to", "model", model)
	}
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}

	return &GeminiClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}, nil
}

// Generate implements the LLMClient interface
func (g *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	reqPayload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if params.Temperature != nil || params.TopP != nil || params.TopK != nil ||
		params.MaxTokens != nil || len(params.Stop) > 0 {
		reqPayload.GenerationConfig = &generationConfig{
			Temperature:     params.Temperature,
			TopP:            params.TopP,
			TopK:            params.TopK,
			MaxOutputTokens: params.MaxTokens,
			StopSequences:   params.Stop,
		}
	}

	reqBodyBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("content-type", "application/json")

	slog.Debug("Sending REST request to Gemini", "model", g.model)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	slog.Debug("Raw Gemini response", "status", resp.StatusCode, "body_length", len(bodyBytes))

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("gemini API rate limited (status %d): %w", resp.StatusCode, ErrTransient)
	}
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("gemini API returned status %d: %w", resp.StatusCode, ErrTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("gemini API error: %s - %s", apiResp.Error.Status, apiResp.Error.Message)
	}
	if apiResp.PromptFeedback != nil && apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked response: %s", apiResp.PromptFeedback.BlockReason)
	}
	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("received empty candidates from Gemini")
	}

	finalText := ""
	for _, part := range apiResp.Candidates[0].Content.Parts {
		finalText += part.Text
	}
	if finalText == "" {
		return "", fmt.Errorf("received candidate but no text parts")
	}
	return finalText, nil
}
