package coverart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

const openverseBaseURL = "https://api.openverse.org"

// openverseResolver queries the Openverse open-media index with a free-text
// query augmented by a kind-appropriate suffix ("X book cover").
type openverseResolver struct {
	client  *apiClient
	cache   *SourceCache
	metrics *metrics.CoverArtMetrics
	baseURL string
}

func newOpenverseResolver(cache *SourceCache, m *metrics.CoverArtMetrics) *openverseResolver {
	return &openverseResolver{
		client:  newAPIClient(sourceOpenverse),
		cache:   cache,
		metrics: m,
		baseURL: openverseBaseURL,
	}
}

func (r *openverseResolver) Name() string { return sourceOpenverse }

type openverseSearchResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

func (r *openverseResolver) Resolve(ctx context.Context, kind Kind, query string) (string, error) {
	fullQuery := query + " " + kindSuffix(kind)
	if cached, ok := r.cache.Get(sourceOpenverse, fullQuery); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.IncrementResolverCalls(sourceOpenverse)
	}

	searchURL := fmt.Sprintf("%s/v1/images/?q=%s&page_size=5",
		r.baseURL, url.QueryEscape(fullQuery))

	var resp openverseSearchResponse
	if err := r.client.getJSON(ctx, searchURL, &resp); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementResolverErrors(sourceOpenverse)
		}
		serviceLogger.Warn("Openverse search failed",
			"query", fullQuery,
			"error", err)
		return "", ErrCoverNotFound
	}

	for _, result := range resp.Results {
		if result.URL != "" {
			imageURL := upgradeScheme(result.URL)
			r.cache.Put(sourceOpenverse, fullQuery, imageURL)
			return imageURL, nil
		}
	}

	return "", ErrCoverNotFound
}
