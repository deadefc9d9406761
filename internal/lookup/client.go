package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
)

// maxBody bounds the response size read from the service.
const maxBody = 1 << 20

// HTTPClient POSTs {"term": ...} to the define endpoint.
type HTTPClient struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
	retryDelay time.Duration
}

// NewHTTPClient creates a client for the define endpoint at url.
func NewHTTPClient(url string, timeout time.Duration, log *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.OrNop(log).With("adapter", "define"),
		retryDelay: 500 * time.Millisecond,
	}
}

type defineRequest struct {
	Term string `json:"term"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Define fetches and shapes the definition of term.
func (c *HTTPClient) Define(ctx context.Context, term string) (*Result, error) {
	term, err := NormalizeTerm(term)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(defineRequest{Term: term})
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	c.log.DebugContext(ctx, "define request", slog.String("term", term))

	resp, err := c.doWithRetry(ctx, payload, term)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled(ctx.Err())
		}
		c.log.ErrorContext(ctx, "define request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, errors.NewLookupFailed(term, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.NewLookupFailed(term, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg += ": " + eb.Error
		}
		if resp.StatusCode == http.StatusBadRequest {
			return nil, errors.NewInvalidRequest(msg)
		}
		return nil, errors.NewLookupFailed(term, fmt.Errorf("%s", msg))
	}

	var raw Result
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewLookupFailed(term, fmt.Errorf("decode json: %w", err))
	}
	result := Shape(term, &raw)

	c.log.DebugContext(ctx, "define response",
		slog.String("term", term),
		slog.Int("status", resp.StatusCode),
		slog.Int("domains", len(result.Domains)),
	)
	return result, nil
}

// doWithRetry sends the request, retrying once on 5xx or network errors.
func (c *HTTPClient) doWithRetry(ctx context.Context, payload []byte, term string) (*http.Response, error) {
	resp, err := c.send(ctx, payload)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "define retry", slog.String("term", term), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}
	return c.send(ctx, payload)
}

func (c *HTTPClient) send(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}
