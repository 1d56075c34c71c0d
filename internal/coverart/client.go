package coverart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/hobbydex/coverart-go/internal/errors"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxRetries            = 3
	maxResponseBytes      = 4 << 20 // search API payloads, not images

	userAgentName    = "coverart-go"
	userAgentContact = "https://github.com/hobbydex/coverart-go"
)

// buildUserAgent constructs the user-agent sent to every search backend.
// Wikimedia's robot policy wants a contact URL and library version included.
func buildUserAgent() string {
	return fmt.Sprintf("%s/1.0 (%s) Go-HTTP-Client/%s",
		userAgentName, userAgentContact, runtime.Version())
}

// apiClient is the shared HTTP layer for resolvers: retrying GET with
// exponential backoff, body size limits and error categorization.
type apiClient struct {
	httpClient *http.Client
	source     string
}

func newAPIClient(source string) *apiClient {
	return &apiClient{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		source:     source,
	}
}

// get fetches url and returns the response body. Transient failures are
// retried up to maxRetries with exponential backoff; client errors other
// than 429 are returned immediately.
func (c *apiClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := c.doGet(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, lastErr
		}
		serviceLogger.Debug("API request failed, retrying",
			"source", c.source,
			"attempt", attempt+1,
			"max_attempts", maxRetries,
			"error", err)
	}
	return nil, lastErr
}

// retryDelay doubles the wait before each retry attempt, starting at 500ms.
func retryDelay(attempt int) time.Duration {
	return (500 * time.Millisecond) << (attempt - 1)
}

func (c *apiClient) doGet(ctx context.Context, url, accept string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, errors.New(err).
			Component("coverart").
			Category(errors.CategoryNetwork).
			Context("source", c.source).
			Context("operation", "create_request").
			Build()
	}
	req.Header.Set("User-Agent", buildUserAgent())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, errors.New(err).
			Component("coverart").
			Category(errors.CategoryNetwork).
			NetworkContext(url, c.httpClient.Timeout).
			Context("source", c.source).
			Build()
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			serviceLogger.Debug("Failed to close response body", "source", c.source, "error", closeErr)
		}
	}()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, errors.New(err).
			Component("coverart").
			Category(errors.CategoryNetwork).
			Context("source", c.source).
			Context("operation", "read_body").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, errors.Newf("%s API returned status %d", c.source, resp.StatusCode).
			Component("coverart").
			Category(statusCategory(resp.StatusCode)).
			Context("source", c.source).
			Context("status_code", resp.StatusCode).
			Build()
	}

	return body, false, nil
}

// getJSON fetches url and unmarshals the JSON response into out.
func (c *apiClient) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.New(err).
			Component("coverart").
			Category(errors.CategoryFileParsing).
			Context("source", c.source).
			Context("response_size", len(body)).
			Build()
	}
	return nil
}

func statusCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}
