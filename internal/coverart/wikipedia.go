package coverart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

// wikipediaResolver queries the encyclopedia "page image" endpoint across an
// ordered list of language editions and title variants. The variant list is
// the outer loop and the language list the inner loop: a bare-title hit in
// any configured language beats a kind-qualified variant.
type wikipediaResolver struct {
	client            *apiClient
	cache             *SourceCache
	metrics           *metrics.CoverArtMetrics
	languages         []string
	backgroundLimiter *rate.Limiter
	baseURLFormat     string // %s is the language edition
}

func newWikipediaResolver(cache *SourceCache, languages []string, m *metrics.CoverArtMetrics) *wikipediaResolver {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &wikipediaResolver{
		client:    newAPIClient(sourceWikipedia),
		cache:     cache,
		metrics:   m,
		languages: languages,
		// Background audits stay at 2 rps to respect Wikipedia's rate limits;
		// interactive requests are not limited.
		backgroundLimiter: rate.NewLimiter(rate.Limit(2), 2),
		baseURLFormat:     "https://%s.wikipedia.org/w/api.php",
	}
}

func (r *wikipediaResolver) Name() string { return sourceWikipedia }

func (r *wikipediaResolver) Resolve(ctx context.Context, kind Kind, query string) (string, error) {
	cacheQuery := string(kind) + ":" + query
	if cached, ok := r.cache.Get(sourceWikipedia, cacheQuery); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.IncrementResolverCalls(sourceWikipedia)
	}

	reqID := uuid.New().String()[:8]
	logger := serviceLogger.With("provider", sourceWikipedia, "request_id", reqID, "query", query)

	var limiter *rate.Limiter
	if isBackgroundOperation(ctx) {
		limiter = r.backgroundLimiter
	}

	for _, variant := range titleVariants(kind, query) {
		for _, lang := range r.languages {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return "", ErrCoverNotFound
				}
			}

			thumbnail, err := r.queryThumbnail(ctx, lang, variant)
			if err != nil {
				logger.Debug("No page image for variant",
					"language", lang,
					"variant", variant,
					"error", err)
				continue
			}
			thumbnail = upgradeScheme(thumbnail)
			r.cache.Put(sourceWikipedia, cacheQuery, thumbnail)
			logger.Debug("Wikipedia thumbnail resolved",
				"language", lang,
				"variant", variant)
			return thumbnail, nil
		}
	}

	if r.metrics != nil {
		r.metrics.IncrementResolverErrors(sourceWikipedia)
	}
	return "", ErrCoverNotFound
}

// queryThumbnail asks one language edition's pageimages endpoint for a free
// thumbnail of the given page title.
func (r *wikipediaResolver) queryThumbnail(ctx context.Context, lang, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "pageimages")
	params.Set("piprop", "thumbnail")
	params.Set("pilicense", "free")
	params.Set("pithumbsize", "600")
	params.Set("redirects", "")
	params.Set("titles", title)

	endpoint := fmt.Sprintf(r.baseURLFormat, lang) + "?" + params.Encode()
	body, err := r.client.get(ctx, endpoint, "application/json")
	if err != nil {
		return "", err
	}

	resp, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return "", ErrCoverNotFound
	}

	pages, err := resp.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		// Normal for titles without a page in this language edition.
		return "", ErrCoverNotFound
	}

	thumbnail, err := pages[0].GetString("thumbnail", "source")
	if err != nil || thumbnail == "" {
		return "", ErrCoverNotFound
	}
	return thumbnail, nil
}
