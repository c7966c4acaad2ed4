package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/leaseledger/internal/domain"
)

// RequestIDHeader correlates one logical call across its retries.
const RequestIDHeader = "X-Request-ID"

const maxResponseBytes = 4 << 20

// Config configures the ERP client.
type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// StatusError is returned for an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("erp returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("erp returned status %d: %s", e.StatusCode, e.Body)
}

// Client implements usecase.ERPGateway over the ERP's JSON API.
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

// NewClient constructs a new client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		logger:          logger.With().Str("component", "erp_client").Logger(),
	}
}

// PostBatch submits a journal batch. A well-formed rejection from the ERP is
// returned as a response with Success=false, not as an error.
func (c *Client) PostBatch(ctx context.Context, req *domain.PostingRequest) (*domain.PostingResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode posting request: %w", err)
	}

	c.logger.Info().
		Str("batch_reference", req.BatchReference).
		Int("transactions", len(req.Transactions)).
		Msg("posting transactions to ERP")

	status, data, err := c.do(ctx, http.MethodPost, "/api/transactions/batch", body)
	if err != nil {
		return nil, fmt.Errorf("post batch: %w", err)
	}

	var resp domain.PostingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		if status >= http.StatusBadRequest {
			return nil, fmt.Errorf("post batch: %w", &StatusError{StatusCode: status, Body: truncate(data)})
		}
		return &domain.PostingResponse{Success: false, Message: "Invalid response from ERP system"}, nil
	}
	if status >= http.StatusBadRequest {
		resp.Success = false
	}

	if resp.Success {
		c.logger.Info().Str("batch_id", resp.BatchID).Msg("ERP accepted batch")
	} else {
		c.logger.Warn().Strs("errors", resp.Errors).Str("message", resp.Message).Msg("ERP rejected batch")
	}

	return &resp, nil
}

// Ping checks if the ERP is available.
func (c *Client) Ping(ctx context.Context) error {
	status, data, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return &StatusError{StatusCode: status, Body: truncate(data)}
	}
	return nil
}

// GetAssets lists the ERP's fixed assets.
func (c *Client) GetAssets(ctx context.Context) ([]domain.ERPAsset, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/api/assets", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch assets: %w", err)
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch assets: %w", &StatusError{StatusCode: status, Body: truncate(data)})
	}

	assets := []domain.ERPAsset{}
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	return assets, nil
}

// GetAsset fetches one asset. It returns domain.ErrAssetNotFound on 404.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*domain.ERPAsset, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/api/assets/"+url.PathEscape(assetID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w", assetID, err)
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrAssetNotFound
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch asset %s: %w", assetID, &StatusError{StatusCode: status, Body: truncate(data)})
	}

	var asset domain.ERPAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	return &asset, nil
}

type response struct {
	status int
	body   []byte
}

// do sends one logical request, retrying transport errors and 5xx answers with
// exponential backoff. Every attempt carries the same request ID.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	requestID := uuid.NewString()
	attempt := 0

	operation := func() (response, error) {
		attempt++

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return response{}, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(RequestIDHeader, requestID)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return response{}, backoff.Permanent(err)
			}
			c.logRetry(err, method, path, requestID, attempt)
			return response{}, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			c.logRetry(err, method, path, requestID, attempt)
			return response{}, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(data)}
			c.logRetry(statusErr, method, path, requestID, attempt)
			return response{}, statusErr
		}

		return response{status: resp.StatusCode, body: data}, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	resp, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return 0, nil, err
	}

	return resp.status, resp.body, nil
}

func (c *Client) logRetry(err error, method, path, requestID string, attempt int) {
	c.logger.Warn().
		Err(err).
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("attempt", attempt).
		Msg("ERP request failed")
}

func truncate(b []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
