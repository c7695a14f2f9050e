package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medparse/internal/config"
	"medparse/internal/domain"
	"medparse/internal/parser"
)

const (
	apiURL = "https://api.groq.com/openai/v1/chat/completions"

	providerName = "groq"
)

// Parser implements port.MedicineParser using the Groq chat completions API
// (OpenAI-compatible wire format).
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates a Groq-based medicine parser from the parser config.
func NewParser(cfg *config.ParserConfig) *Parser {
	return newParser(cfg, apiURL)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.ParserConfig, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = "mixtral-8x7b-32768"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		// Backstop only; the per-item deadline arrives via ctx.
		client: &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Extract(ctx context.Context, medicineName string) (*domain.ParsedFields, error) {
	reqBody := map[string]interface{}{
		"model":       p.model,
		"temperature": 0,
		"max_tokens":  200,
		"messages": []map[string]interface{}{
			{"role": "system", "content": parser.SystemPrompt},
			{"role": "user", "content": parser.BuildExtractionPrompt(medicineName)},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &parser.UnavailableError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &parser.UnavailableError{Provider: providerName, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("groq API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 300))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &parser.UnavailableError{Provider: providerName, Err: baseErr}
		}
		return nil, &parser.InvalidResponseError{Provider: providerName, Err: baseErr}
	}

	return parseResponse(respBody, medicineName)
}

// apiResponse models the Groq chat completions response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func parseResponse(body []byte, medicineName string) (*domain.ParsedFields, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &parser.InvalidResponseError{Provider: providerName, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return nil, &parser.InvalidResponseError{Provider: providerName, Err: fmt.Errorf("empty response: no choices")}
	}

	text := stripJSONFence(resp.Choices[0].Message.Content)

	var fields domain.ParsedFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, &parser.InvalidResponseError{
			Provider: providerName,
			Err:      fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 300)),
		}
	}

	backfill(&fields, medicineName)
	return &fields, nil
}

// backfill fills fields the model left empty from the descriptor's own text.
func backfill(fields *domain.ParsedFields, medicineName string) {
	if fields.Strength == "" {
		fields.Strength = parser.MatchStrength(medicineName)
	}
	if fields.Formulation == "" {
		fields.Formulation = parser.MatchFormulation(medicineName)
	}
	if parser.IsPatch(medicineName) {
		// An explicit duration in the descriptor wins over model knowledge.
		if explicit := parser.MatchPatchDuration(medicineName); explicit != "" {
			fields.Duration = explicit
		} else {
			fields.Duration = parser.CleanDuration(fields.Duration)
		}
	} else {
		fields.Duration = ""
	}
}

// stripJSONFence removes a ```json ... ``` wrapper some models emit.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
