package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxAttempts = 3

// APIError is a non-2xx response from the REST endpoint
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("table store returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("table store returned status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// PostgRESTStore implements TableStore against a Supabase project's REST API
type PostgRESTStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
	backoff func(attempt int) time.Duration
}

// PostgRESTOption customizes a PostgRESTStore
type PostgRESTOption func(*PostgRESTStore)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) PostgRESTOption {
	return func(s *PostgRESTStore) { s.client = c }
}

// WithBackoff replaces the linear retry delay
func WithBackoff(f func(attempt int) time.Duration) PostgRESTOption {
	return func(s *PostgRESTStore) { s.backoff = f }
}

// NewPostgRESTStore creates a client for https://<project>.supabase.co style URLs
func NewPostgRESTStore(projectURL, apiKey string, timeout time.Duration, opts ...PostgRESTOption) *PostgRESTStore {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	s := &PostgRESTStore{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		client:  &http.Client{Transport: transport, Timeout: timeout},
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * 500 * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select performs GET /{table}?select=*&{column}=eq.{value}
func (s *PostgRESTStore) Select(ctx context.Context, table, column, value string) ([]Row, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set(column, "eq."+value)
	return s.do(ctx, http.MethodGet, table, query, nil)
}

// Update performs PATCH /{table}?{column}=eq.{value} and returns the representation
func (s *PostgRESTStore) Update(ctx context.Context, table, column, value string, values Row) ([]Row, error) {
	body, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}
	query := url.Values{}
	query.Set(column, "eq."+value)
	return s.do(ctx, http.MethodPatch, table, query, body)
}

// Close drops idle connections
func (s *PostgRESTStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *PostgRESTStore) do(ctx context.Context, method, table string, query url.Values, body []byte) ([]Row, error) {
	endpoint := s.baseURL + "/" + url.PathEscape(table) + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		rows, err := s.once(ctx, method, endpoint, body)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts-1 {
			timer := time.NewTimer(s.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil, fmt.Errorf("%s %s failed: %w", method, table, lastErr)
}

func (s *PostgRESTStore) once(ctx context.Context, method, endpoint string, body []byte) ([]Row, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, payload)
	}

	var rows []Row
	if len(bytes.TrimSpace(payload)) == 0 {
		return rows, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return rows, nil
}

func parseAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(payload))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}

// isRetryable retries transport failures and 5xx/429, never 4xx or cancellation
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
