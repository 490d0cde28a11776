package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/logger"
	"go.uber.org/zap"
)

// Defaults for the remote validator.
const (
	DefaultPingTimeout    = 5 * time.Second
	DefaultRequestTimeout = 300 * time.Second
	DefaultMaxRetries     = 3
)

// Remote posts each record to an HTTP validator service.
type Remote struct {
	URL             string
	Client          *http.Client
	PingTimeout     time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
}

var _ contract.Validator = &Remote{} // Compile-time check

// NewRemote creates a remote validator for url with default timeouts.
func NewRemote(url string) *Remote {
	return &Remote{
		URL:             url,
		Client:          &http.Client{Timeout: DefaultRequestTimeout},
		PingTimeout:     DefaultPingTimeout,
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: backoff.DefaultInitialInterval,
	}
}

// Name returns the endpoint URL.
func (r *Remote) Name() string { return r.URL }

// Ping sends a GET to the endpoint. Any HTTP response counts as reachable.
func (r *Remote) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.PingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: cannot reach %s: %v", ErrUnreachable, r.URL, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

// Validate posts the record and interprets the response. Network errors and
// 5xx responses are retried with exponential backoff.
func (r *Remote) Validate(ctx context.Context, record map[string]any) ([]any, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var payload []byte
	attempt := 0
	operation := func() error {
		attempt++
		payload, err = r.post(ctx, body)
		if err != nil {
			logger.Debug("Validator request failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.InitialInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, r.MaxRetries), ctx)); err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("invalid validator response: %w", err)
	}
	if list, ok := decoded.([]any); ok {
		return list, nil
	}
	return []any{UnrecognisedResponse}, nil
}

// post performs one request. Only transient failures are left retryable.
func (r *Remote) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%d Server Error for url: %s", resp.StatusCode, r.URL)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, backoff.Permanent(fmt.Errorf("%d Client Error for url: %s", resp.StatusCode, r.URL))
	}
	return data, nil
}
