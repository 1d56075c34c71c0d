package coverart

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hobbydex/coverart-go/internal/conf"
	"github.com/hobbydex/coverart-go/internal/datastore"
	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

// Source identifiers used as cache keys and metric labels.
const (
	sourceOpenLibrary  = "openlibrary"
	sourceITunes       = "itunes"
	sourceOpenverse    = "openverse"
	sourceWikipedia    = "wikipedia"
	sourceImageSearch  = "imagesearch"
	sourceCustomSearch = "customsearch"
)

// defaultTTLDays is the fallback freshness policy applied when a source has
// no configured override.
var defaultTTLDays = map[string]int{
	sourceOpenLibrary:  14,
	sourceITunes:       14,
	sourceOpenverse:    14,
	sourceWikipedia:    30,
	sourceImageSearch:  7,
	sourceCustomSearch: 7,
}

// SourceCache is a TTL-keyed lookup of resolver results, one entry per
// (source, normalized query). It layers an in-memory cache over the
// persisted CoverCache table; both sides expire lazily, and a miss or an
// expired row only means "re-fetch", never an error.
type SourceCache struct {
	mem     *gocache.Cache
	store   datastore.Interface
	ttls    map[string]time.Duration
	metrics *metrics.CoverArtMetrics
	now     func() time.Time
}

// NewSourceCache builds a cache with the per-source TTL policy from settings.
// store may be nil, in which case results live only in memory.
func NewSourceCache(store datastore.Interface, settings *conf.Settings, m *metrics.CoverArtMetrics) *SourceCache {
	ttls := make(map[string]time.Duration, len(defaultTTLDays))
	overrides := map[string]int{}
	if settings != nil {
		overrides = map[string]int{
			sourceOpenLibrary:  settings.Sources.TTLDays.OpenLibrary,
			sourceITunes:       settings.Sources.TTLDays.ITunes,
			sourceOpenverse:    settings.Sources.TTLDays.Openverse,
			sourceWikipedia:    settings.Sources.TTLDays.Wikipedia,
			sourceImageSearch:  settings.Sources.TTLDays.ImageSearch,
			sourceCustomSearch: settings.Sources.TTLDays.CustomSearch,
		}
	}
	for source, days := range defaultTTLDays {
		if o := overrides[source]; o > 0 {
			days = o
		}
		ttls[source] = time.Duration(days) * 24 * time.Hour
	}

	return &SourceCache{
		mem:     gocache.New(gocache.NoExpiration, 10*time.Minute),
		store:   store,
		ttls:    ttls,
		metrics: m,
		now:     time.Now,
	}
}

// TTL returns the freshness window for a source.
func (sc *SourceCache) TTL(source string) time.Duration {
	if ttl, ok := sc.ttls[source]; ok {
		return ttl
	}
	return 7 * 24 * time.Hour
}

func cacheKey(source, query string) string {
	return source + "\x00" + strings.ToLower(query)
}

// Get returns the cached URL for (source, query) if it exists and is still
// within the source's TTL. Expired entries are treated as absent; they are
// not deleted eagerly.
func (sc *SourceCache) Get(source, query string) (string, bool) {
	key := cacheKey(source, query)

	if v, expiry, found := sc.mem.GetWithExpiration(key); found {
		if expiry.IsZero() || sc.now().Before(expiry) {
			if url, ok := v.(string); ok {
				sc.hit(source)
				return url, true
			}
		}
	}

	if sc.store != nil {
		entry, err := sc.store.GetCoverCache(source, strings.ToLower(query))
		if err != nil {
			serviceLogger.Debug("Cover cache read failed, treating as miss",
				"source", source,
				"error", err)
		} else if entry != nil {
			age := sc.now().Sub(entry.CapturedAt)
			if age <= sc.TTL(source) && entry.URL != "" {
				sc.mem.Set(key, entry.URL, sc.TTL(source)-age)
				sc.hit(source)
				return entry.URL, true
			}
		}
	}

	sc.miss(source)
	return "", false
}

// Put stores a freshly fetched URL for (source, query) in memory and writes
// it through to the persisted cache. Writes are idempotent per key, so
// concurrent last-write-wins races are harmless.
func (sc *SourceCache) Put(source, query, url string) {
	if url == "" {
		return
	}
	key := cacheKey(source, query)
	sc.mem.Set(key, url, sc.TTL(source))

	if sc.store != nil {
		err := sc.store.SaveCoverCache(&datastore.CoverCache{
			Source:     source,
			Query:      strings.ToLower(query),
			URL:        url,
			CapturedAt: sc.now(),
		})
		if err != nil {
			serviceLogger.Debug("Cover cache write failed",
				"source", source,
				"error", err)
		}
	}
}

func (sc *SourceCache) hit(source string) {
	if sc.metrics != nil {
		sc.metrics.IncrementCacheHits(source)
	}
}

func (sc *SourceCache) miss(source string) {
	if sc.metrics != nil {
		sc.metrics.IncrementCacheMisses(source)
	}
}
