package coverart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

const imageSearchBaseURL = "https://duckduckgo.com"

// imageSearchResolver queries a generic image-search endpoint with a
// locale-aware query and a JSON accept header.
type imageSearchResolver struct {
	client  *apiClient
	cache   *SourceCache
	metrics *metrics.CoverArtMetrics
	locale  string
	baseURL string
}

func newImageSearchResolver(cache *SourceCache, languages []string, m *metrics.CoverArtMetrics) *imageSearchResolver {
	locale := "en-us"
	if len(languages) > 0 && languages[0] == "ru" {
		locale = "ru-ru"
	}
	return &imageSearchResolver{
		client:  newAPIClient(sourceImageSearch),
		cache:   cache,
		metrics: m,
		locale:  locale,
		baseURL: imageSearchBaseURL,
	}
}

func (r *imageSearchResolver) Name() string { return sourceImageSearch }

type imageSearchResponse struct {
	Results []struct {
		Image string `json:"image"`
	} `json:"results"`
}

func (r *imageSearchResolver) Resolve(ctx context.Context, kind Kind, query string) (string, error) {
	fullQuery := query + " " + kindSuffix(kind)
	if cached, ok := r.cache.Get(sourceImageSearch, fullQuery); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.IncrementResolverCalls(sourceImageSearch)
	}

	searchURL := fmt.Sprintf("%s/i.js?q=%s&l=%s&o=json",
		r.baseURL, url.QueryEscape(fullQuery), r.locale)

	var resp imageSearchResponse
	if err := r.client.getJSON(ctx, searchURL, &resp); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementResolverErrors(sourceImageSearch)
		}
		serviceLogger.Warn("Image search failed",
			"query", fullQuery,
			"error", err)
		return "", ErrCoverNotFound
	}

	for _, result := range resp.Results {
		if result.Image != "" {
			imageURL := upgradeScheme(result.Image)
			r.cache.Put(sourceImageSearch, fullQuery, imageURL)
			return imageURL, nil
		}
	}

	return "", ErrCoverNotFound
}
