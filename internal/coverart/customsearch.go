package coverart

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

const customSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

// customSearchResolver queries the Google Custom Search JSON API for images.
// It needs two secrets (API key and engine id); when either is missing the
// resolver degrades to a no-op, logging a single warning instead of failing
// every call.
type customSearchResolver struct {
	client   *apiClient
	cache    *SourceCache
	metrics  *metrics.CoverArtMetrics
	apiKey   string
	engineID string
	warnOnce sync.Once
	baseURL  string
}

func newCustomSearchResolver(cache *SourceCache, apiKey, engineID string, m *metrics.CoverArtMetrics) *customSearchResolver {
	return &customSearchResolver{
		client:   newAPIClient(sourceCustomSearch),
		cache:    cache,
		metrics:  m,
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  customSearchBaseURL,
	}
}

func (r *customSearchResolver) Name() string { return sourceCustomSearch }

type customSearchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

func (r *customSearchResolver) configured() bool {
	return r.apiKey != "" && r.engineID != ""
}

func (r *customSearchResolver) Resolve(ctx context.Context, kind Kind, query string) (string, error) {
	if !r.configured() {
		r.warnOnce.Do(func() {
			serviceLogger.Warn("Custom search is not configured, resolver disabled",
				"has_api_key", r.apiKey != "",
				"has_engine_id", r.engineID != "")
		})
		return "", ErrCoverNotFound
	}

	fullQuery := fmt.Sprintf("%s %s OR %s", query, kindSuffix(kind), localizedSuffix(kind))
	if cached, ok := r.cache.Get(sourceCustomSearch, fullQuery); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.IncrementResolverCalls(sourceCustomSearch)
	}

	searchURL := fmt.Sprintf("%s?key=%s&cx=%s&searchType=image&num=3&q=%s",
		r.baseURL, url.QueryEscape(r.apiKey), url.QueryEscape(r.engineID), url.QueryEscape(fullQuery))

	var resp customSearchResponse
	if err := r.client.getJSON(ctx, searchURL, &resp); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementResolverErrors(sourceCustomSearch)
		}
		serviceLogger.Warn("Custom search failed",
			"query", fullQuery,
			"error", err)
		return "", ErrCoverNotFound
	}

	for _, item := range resp.Items {
		if item.Link != "" {
			imageURL := upgradeScheme(item.Link)
			r.cache.Put(sourceCustomSearch, fullQuery, imageURL)
			return imageURL, nil
		}
	}

	return "", ErrCoverNotFound
}
