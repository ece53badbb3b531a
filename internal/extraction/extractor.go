// Package extraction wraps the external AI-backed claim extraction endpoint.
// The service treats extraction as an opaque, time-boxed call: page text in,
// validated claim records out. Everything returned by the model is checked at
// this boundary so loosely shaped data never reaches storage.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/linkedtrust/claim-extract/internal/prompts"
)

// Config holds configuration for the extraction client.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat-completions endpoint to extract
// claims from page text.
type Client struct {
	client   *resty.Client
	model    string
	endpoint string
}

// Request is one extraction call. The prompt travels with the request rather
// than living in client state, so concurrent jobs for different documents
// cannot cross-contaminate configuration.
type Request struct {
	PageText string
	Prompt   string // user prompt prefix; empty uses the built-in prompt
}

// Claim is one validated claim record returned by the extractor.
type Claim struct {
	Subject     string   `json:"subject"`
	Claim       string   `json:"claim"`
	Object      string   `json:"object,omitempty"`
	Statement   string   `json:"statement"`
	HowKnown    string   `json:"howKnown,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Aspect      string   `json:"aspect,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Stars       *int     `json:"stars,omitempty"`
	Amt         *float64 `json:"amt,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	HowMeasured string   `json:"howMeasured,omitempty"`
}

// NewClient creates a new extraction client.
// Parameters:
//   - cfg: extraction configuration including model, API key, and timeout.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Client{
		client:   client,
		model:    cfg.Model,
		endpoint: strings.TrimSuffix(baseURL, "/") + "/chat/completions",
	}
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ExtractPage extracts claims from one page of text.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: page text and per-call prompt.
// Returns:
//   - []Claim: validated claim records; empty when the page has none.
//   - error: non-nil if the API request fails or the response violates the
//     claim schema.
func (c *Client) ExtractPage(ctx context.Context, req *Request) ([]Claim, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = prompts.ExtractionUserPrompt
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.ExtractionSystemPrompt},
			{Role: "user", Content: prompt + req.PageText},
		},
		MaxTokens: 2000,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call extraction API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("extraction API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("extraction API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from extraction API (status: %d)", httpResp.StatusCode())
	}

	return ParseClaims(resp.Choices[0].Message.Content)
}

// ParseClaims decodes and validates the extractor's response content. It
// tolerates markdown code fences around the array but nothing else; any
// schema violation fails the whole page.
func ParseClaims(content string) ([]Claim, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return nil, nil
	}

	var claims []Claim
	if err := json.Unmarshal([]byte(payload), &claims); err != nil {
		return nil, fmt.Errorf("malformed extraction response: %w", err)
	}

	for i := range claims {
		if err := validateClaim(&claims[i]); err != nil {
			return nil, fmt.Errorf("claim %d rejected: %w", i, err)
		}
	}
	return claims, nil
}

// validKinds are the howKnown values the trust graph accepts.
var validKinds = map[string]bool{
	"DOCUMENT":         true,
	"FIRST_HAND":       true,
	"SECOND_HAND":      true,
	"WEB_DOCUMENT":     true,
	"VERIFIED_LOGIN":   true,
	"PHYSICAL_RECEIPT": true,
}

func validateClaim(c *Claim) error {
	c.Subject = strings.TrimSpace(c.Subject)
	c.Statement = strings.TrimSpace(c.Statement)

	if c.Subject == "" {
		return fmt.Errorf("missing subject")
	}
	if c.Statement == "" {
		return fmt.Errorf("missing statement")
	}
	if c.HowKnown == "" {
		c.HowKnown = "DOCUMENT"
	} else if !validKinds[c.HowKnown] {
		return fmt.Errorf("unknown howKnown value %q", c.HowKnown)
	}
	if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 1) {
		return fmt.Errorf("confidence %v out of range", *c.Confidence)
	}
	return nil
}

// stripCodeFence unwraps a ```json ... ``` fenced block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		// drop the language tag line
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
