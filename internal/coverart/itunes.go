package coverart

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

const itunesBaseURL = "https://itunes.apple.com"

// itunesResolver is the authoritative resolver for movies and games: the
// iTunes storefront search API filtered by media type. Artwork comes back as
// a 100x100 thumbnail URL which is rewritten to the 600x600 rendition.
type itunesResolver struct {
	client  *apiClient
	cache   *SourceCache
	metrics *metrics.CoverArtMetrics
	baseURL string
}

func newITunesResolver(cache *SourceCache, m *metrics.CoverArtMetrics) *itunesResolver {
	return &itunesResolver{
		client:  newAPIClient(sourceITunes),
		cache:   cache,
		metrics: m,
		baseURL: itunesBaseURL,
	}
}

func (r *itunesResolver) Name() string { return sourceITunes }

type itunesSearchResponse struct {
	Results []struct {
		ArtworkURL100 string `json:"artworkUrl100"`
	} `json:"results"`
}

func itunesMedia(kind Kind) string {
	if kind == KindMovie {
		return "movie"
	}
	return "software"
}

func (r *itunesResolver) Resolve(ctx context.Context, kind Kind, query string) (string, error) {
	cacheQuery := string(kind) + ":" + query
	if cached, ok := r.cache.Get(sourceITunes, cacheQuery); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.IncrementResolverCalls(sourceITunes)
	}

	searchURL := fmt.Sprintf("%s/search?term=%s&media=%s&limit=5",
		r.baseURL, url.QueryEscape(query), itunesMedia(kind))

	var resp itunesSearchResponse
	if err := r.client.getJSON(ctx, searchURL, &resp); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementResolverErrors(sourceITunes)
		}
		serviceLogger.Warn("iTunes search failed",
			"kind", kind,
			"query", query,
			"error", err)
		return "", ErrCoverNotFound
	}

	for _, result := range resp.Results {
		if result.ArtworkURL100 == "" {
			continue
		}
		artwork := upgradeScheme(strings.Replace(result.ArtworkURL100, "100x100", "600x600", 1))
		r.cache.Put(sourceITunes, cacheQuery, artwork)
		return artwork, nil
	}

	return "", ErrCoverNotFound
}
