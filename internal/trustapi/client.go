// Package trustapi is the client for the external trust-graph API that is the
// authoritative store for published claims. The service authenticates with
// its own credentials and publishes on behalf of the user; see DESIGN.md for
// why the user-credential mode was not implemented.
package trustapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/linkedtrust/claim-extract/internal/domain"
)

// Config holds configuration for the trust API client.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	IssuerID string
	Timeout  time.Duration
}

// Client talks to the trust-graph API with bearer-token auth. A 401 triggers
// one re-login and retry before the error is surfaced.
type Client struct {
	client   *resty.Client
	baseURL  string
	email    string
	password string
	issuerID string

	mu          sync.Mutex
	accessToken string
}

// ClaimPayload is the wire shape of a claim submitted for publication.
type ClaimPayload struct {
	Subject       string   `json:"subject"`
	Claim         string   `json:"claim,omitempty"`
	Object        string   `json:"object,omitempty"`
	Statement     string   `json:"statement"`
	SourceURI     string   `json:"sourceURI,omitempty"`
	EffectiveDate string   `json:"effectiveDate,omitempty"`
	HowKnown      string   `json:"howKnown,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Aspect        string   `json:"aspect,omitempty"`
	Score         *float64 `json:"score,omitempty"`
	Stars         *int     `json:"stars,omitempty"`
	Amt           *float64 `json:"amt,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	HowMeasured   string   `json:"howMeasured,omitempty"`
	IssuerID      string   `json:"issuerId,omitempty"`
	IssuerIDType  string   `json:"issuerIdType,omitempty"`
}

// PublishedClaim is the remote identity of an accepted claim.
type PublishedClaim struct {
	ID  interface{} `json:"id"`
	URL string      `json:"-"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type claimsResponse struct {
	Claims []map[string]interface{} `json:"claims"`
}

// NewClient creates a new trust API client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		client:   client,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		email:    cfg.Email,
		password: cfg.Password,
		issuerID: cfg.IssuerID,
	}
}

// IssuerID returns the issuer identity stamped on published claims.
func (c *Client) IssuerID() string {
	return c.issuerID
}

// login authenticates with service credentials and caches the access token.
func (c *Client) login(ctx context.Context) error {
	var resp loginResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": c.email, "password": c.password}).
		SetResult(&resp).
		Post(c.baseURL + "/auth/login")
	if err != nil {
		return fmt.Errorf("trust API login failed: %w", err)
	}
	if httpResp.IsError() || resp.AccessToken == "" {
		return &domain.PublishError{
			StatusCode: httpResp.StatusCode(),
			Message:    "authentication failed: " + string(httpResp.Body()),
		}
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.accessToken
	c.mu.Unlock()
	if tok != "" {
		return tok, nil
	}
	if err := c.login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	tok = c.accessToken
	c.mu.Unlock()
	return tok, nil
}

// CreateClaim publishes one claim.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - payload: claim fields; issuer identity is stamped here.
// Returns:
//   - *PublishedClaim: remote id and claim URL on acceptance.
//   - error: *domain.PublishError carrying the remote response verbatim on
//     rejection.
func (c *Client) CreateClaim(ctx context.Context, payload *ClaimPayload) (*PublishedClaim, error) {
	if payload.Subject == "" || payload.Statement == "" {
		return nil, &domain.PublishError{Message: "claims require subject and statement"}
	}

	payload.IssuerID = c.issuerID
	payload.IssuerIDType = "URL"

	result, retry, err := c.postClaim(ctx, payload)
	if retry {
		// Token expired; re-authenticate once.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		result, _, err = c.postClaim(ctx, payload)
	}
	return result, err
}

// postClaim performs one authenticated POST. The middle return value reports
// whether the call failed with 401 and is worth one retry after re-login.
func (c *Client) postClaim(ctx context.Context, payload *ClaimPayload) (*PublishedClaim, bool, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, false, err
	}

	var created PublishedClaim
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetBody(payload).
		SetResult(&created).
		Post(c.baseURL + "/api/claims")
	if err != nil {
		return nil, false, fmt.Errorf("trust API request failed: %w", err)
	}

	if httpResp.StatusCode() == 401 {
		return nil, true, &domain.PublishError{
			StatusCode: 401,
			Message:    string(httpResp.Body()),
		}
	}
	if httpResp.IsError() {
		return nil, false, &domain.PublishError{
			StatusCode: httpResp.StatusCode(),
			Message:    string(httpResp.Body()),
		}
	}

	if created.ID != nil {
		created.URL = fmt.Sprintf("%s/claim/%v", c.baseURL, created.ID)
	}
	return &created, false, nil
}

// GetClaims retrieves claims with optional filters (subject, sourceURI,
// object, page, limit).
func (c *Client) GetClaims(ctx context.Context, filters map[string]string) ([]map[string]interface{}, error) {
	var resp claimsResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(filters).
		SetResult(&resp).
		Get(c.baseURL + "/api/claim")
	if err != nil {
		return nil, fmt.Errorf("trust API request failed: %w", err)
	}
	if httpResp.IsError() {
		return nil, &domain.PublishError{
			StatusCode: httpResp.StatusCode(),
			Message:    string(httpResp.Body()),
		}
	}
	return resp.Claims, nil
}

// GetValidations retrieves validation claims for a published claim: claims
// whose object is the claim's URL.
func (c *Client) GetValidations(ctx context.Context, claimURL string) ([]map[string]interface{}, error) {
	return c.GetClaims(ctx, map[string]string{
		"object": claimURL,
		"limit":  "100",
	})
}
