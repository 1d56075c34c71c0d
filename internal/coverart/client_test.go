package coverart

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbydex/coverart-go/internal/errors"
)

func newTestAPIClient(t *testing.T) *apiClient {
	t.Helper()
	c := newAPIClient("testsource")
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestAPIClientRetriesServerErrors(t *testing.T) {
	c := newTestAPIClient(t)

	attempts := 0
	httpmock.RegisterResponder(http.MethodGet, "https://api.example.com/data",
		func(*http.Request) (*http.Response, error) {
			attempts++
			if attempts < 3 {
				return httpmock.NewStringResponse(http.StatusInternalServerError, "boom"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
		})

	body, err := c.get(context.Background(), "https://api.example.com/data", "application/json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, 3, attempts)
}

func TestAPIClientDoesNotRetryClientErrors(t *testing.T) {
	c := newTestAPIClient(t)

	httpmock.RegisterResponder(http.MethodGet, "https://api.example.com/data",
		httpmock.NewStringResponder(http.StatusNotFound, "gone"))

	_, err := c.get(context.Background(), "https://api.example.com/data", "")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestAPIClientGivesUpAfterMaxRetries(t *testing.T) {
	c := newTestAPIClient(t)

	httpmock.RegisterResponder(http.MethodGet, "https://api.example.com/data",
		httpmock.NewStringResponder(http.StatusTooManyRequests, "slow down"))

	_, err := c.get(context.Background(), "https://api.example.com/data", "")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLimit))
	assert.Equal(t, maxRetries, httpmock.GetTotalCallCount())
}

func TestRetryDelayIsGeometric(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 500*time.Millisecond, retryDelay(1))
	assert.Equal(t, time.Second, retryDelay(2))
	assert.Equal(t, 2*time.Second, retryDelay(3))
}

func TestAPIClientGetJSON(t *testing.T) {
	c := newTestAPIClient(t)

	httpmock.RegisterResponder(http.MethodGet, "https://api.example.com/data",
		httpmock.NewStringResponder(http.StatusOK, `{"name":"dune"}`))

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.getJSON(context.Background(), "https://api.example.com/data", &out))
	assert.Equal(t, "dune", out.Name)
}

func TestAPIClientGetJSONRejectsMalformedBody(t *testing.T) {
	c := newTestAPIClient(t)

	httpmock.RegisterResponder(http.MethodGet, "https://api.example.com/data",
		httpmock.NewStringResponder(http.StatusOK, "<html>surprise</html>"))

	var out map[string]any
	err := c.getJSON(context.Background(), "https://api.example.com/data", &out)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}
