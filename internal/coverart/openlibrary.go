package coverart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

const openLibraryBaseURL = "https://openlibrary.org"

// openLibraryResolver is the authoritative resolver for books: a
// bibliographic "title contains" search against Open Library, mapped to the
// covers CDN.
type openLibraryResolver struct {
	client  *apiClient
	cache   *SourceCache
	metrics *metrics.CoverArtMetrics
	baseURL string
}

func newOpenLibraryResolver(cache *SourceCache, m *metrics.CoverArtMetrics) *openLibraryResolver {
	return &openLibraryResolver{
		client:  newAPIClient(sourceOpenLibrary),
		cache:   cache,
		metrics: m,
		baseURL: openLibraryBaseURL,
	}
}

func (r *openLibraryResolver) Name() string { return sourceOpenLibrary }

type openLibrarySearchResponse struct {
	Docs []struct {
		CoverID int64 `json:"cover_i"`
	} `json:"docs"`
}

func (r *openLibraryResolver) Resolve(ctx context.Context, kind Kind, query string) (string, error) {
	if cached, ok := r.cache.Get(sourceOpenLibrary, query); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.IncrementResolverCalls(sourceOpenLibrary)
	}

	searchURL := fmt.Sprintf("%s/search.json?title=%s&limit=5&fields=cover_i",
		r.baseURL, url.QueryEscape(query))

	var resp openLibrarySearchResponse
	if err := r.client.getJSON(ctx, searchURL, &resp); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementResolverErrors(sourceOpenLibrary)
		}
		serviceLogger.Warn("Open Library search failed",
			"query", query,
			"error", err)
		return "", ErrCoverNotFound
	}

	for _, doc := range resp.Docs {
		if doc.CoverID > 0 {
			coverURL := upgradeScheme(fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverID))
			r.cache.Put(sourceOpenLibrary, query, coverURL)
			serviceLogger.Debug("Open Library cover resolved",
				"query", query,
				"cover_id", doc.CoverID)
			return coverURL, nil
		}
	}

	return "", ErrCoverNotFound
}
