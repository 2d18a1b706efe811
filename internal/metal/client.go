package metal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production registry endpoint.
const DefaultBaseURL = "https://api.metal.build"

// Client is the external token registry contract. All calls are independent,
// cancelable network operations; a transport error and a non-2xx status both
// mean "registry unavailable" for that single call.
type Client interface {
	ListAllTokens(ctx context.Context) (*TokenList, error)
	GetToken(ctx context.Context, address string) (*Token, error)
	CreateToken(ctx context.Context, req CreateTokenRequest) (*CreateJob, error)
	GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error)
	CreateLiquidity(ctx context.Context, tokenAddress string) (*LiquidityResult, error)
	ProvisionWallet(ctx context.Context, userID string) (*Wallet, error)
}

// APIError is returned when the registry answers with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("metal API error %d: %s", e.StatusCode, e.Body)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a registry client authenticated by a static API key.
// An empty baseURL selects the production endpoint.
func NewClient(baseURL, apiKey string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach metal API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *httpClient) ListAllTokens(ctx context.Context) (*TokenList, error) {
	var list TokenList
	if err := c.do(ctx, http.MethodGet, "/merchant/all-tokens", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *httpClient) GetToken(ctx context.Context, address string) (*Token, error) {
	var token Token
	if err := c.do(ctx, http.MethodGet, "/token/"+address, nil, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *httpClient) CreateToken(ctx context.Context, req CreateTokenRequest) (*CreateJob, error) {
	var job CreateJob
	if err := c.do(ctx, http.MethodPost, "/merchant/create-token", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *httpClient) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	var status JobStatus
	if err := c.do(ctx, http.MethodGet, "/merchant/create-token/status/"+jobID, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *httpClient) CreateLiquidity(ctx context.Context, tokenAddress string) (*LiquidityResult, error) {
	var result LiquidityResult
	if err := c.do(ctx, http.MethodPost, "/token/"+tokenAddress+"/liquidity", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) ProvisionWallet(ctx context.Context, userID string) (*Wallet, error) {
	var wallet Wallet
	if err := c.do(ctx, http.MethodPut, "/holder/"+userID, nil, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}
