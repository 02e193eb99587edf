package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/people"
)

// DefaultBaseURL is where the backend listens in local development
const DefaultBaseURL = "http://localhost:8000"

const (
	HealthPath = "/health"
	PeoplePath = "/api/people/"
)

// Client talks to the directory backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request; zero leaves requests unbounded
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the backend at baseURL, DefaultBaseURL when empty
func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health performs the health check and decodes its message
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, HealthPath, nil)
	if err != nil {
		return nil, err
	}

	var result HealthResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &RequestError{Kind: ErrorKindDecode, Method: http.MethodGet, Path: HealthPath, Cause: err}
	}
	return &result, nil
}

// ListPeople fetches the full person collection in server order
func (c *Client) ListPeople(ctx context.Context, schema people.Schema) ([]people.Record, error) {
	body, err := c.do(ctx, http.MethodGet, PeoplePath, nil)
	if err != nil {
		return nil, err
	}

	records, err := people.DecodeRecords(schema, body)
	if err != nil {
		return nil, &RequestError{Kind: ErrorKindDecode, Method: http.MethodGet, Path: PeoplePath, Cause: err}
	}
	return records, nil
}

// CreatePerson posts a create payload. Any 2xx is success; the body is not inspected.
func (c *Client) CreatePerson(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode person payload: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, PeoplePath, data)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &RequestError{Kind: ErrorKindTransport, Method: method, Path: path, Cause: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Sending request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Kind: ErrorKindTransport, Method: method, Path: path, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Kind: ErrorKindTransport, Method: method, Path: path, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body[:min(200, len(body))])))
		return nil, &RequestError{Kind: ErrorKindStatus, Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	return body, nil
}
