package coverart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hobbydex/coverart-go/internal/conf"
	"github.com/hobbydex/coverart-go/internal/datastore"
	"github.com/hobbydex/coverart-go/internal/errors"
	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

// Service is the resolution orchestrator: it owns the resolver set, the
// shared source cache and the validator, and walks resolver chains to pick
// covers.
type Service struct {
	cache        *SourceCache
	validator    *Validator
	openLibrary  Resolver
	itunes       Resolver
	openverse    Resolver
	wikipedia    Resolver
	imageSearch  Resolver
	customSearch Resolver
}

// NewService wires the full resolver set from settings. store may be nil to
// run without persisted caching (used by the resolve subcommand when the
// database is disabled).
func NewService(settings *conf.Settings, store datastore.Interface, m *metrics.CoverArtMetrics) *Service {
	if settings.Debug {
		SetDebugLogging(true)
	}
	cache := NewSourceCache(store, settings, m)

	return &Service{
		cache:        cache,
		validator:    NewValidator(time.Duration(settings.Validator.TimeoutMs)*time.Millisecond, m),
		openLibrary:  newOpenLibraryResolver(cache, m),
		itunes:       newITunesResolver(cache, m),
		openverse:    newOpenverseResolver(cache, m),
		wikipedia:    newWikipediaResolver(cache, settings.Locales, m),
		imageSearch:  newImageSearchResolver(cache, settings.Locales, m),
		customSearch: newCustomSearchResolver(cache, settings.Sources.CustomSearch.APIKey, settings.Sources.CustomSearch.EngineID, m),
	}
}

// PickCover resolves a cover URL for one item. Candidates are tried strictly
// in chain order and validated one at a time; the first loadable URL wins
// and the rest of the chain is never attempted. The terminal inline
// placeholder guarantees a non-empty result even when every real source
// fails; mid-chain candidates that are themselves placeholders are skipped
// without validation. PickCover never returns an error to its caller.
func (s *Service) PickCover(ctx context.Context, kind Kind, title, existingCover string) string {
	reqID := uuid.New().String()[:8]
	logger := serviceLogger.With("request_id", reqID, "kind", kind, "title", title)

	chain := s.BuildChain(kind, title, existingCover)
	seen := make(map[string]bool, len(chain))

	for _, candidate := range chain {
		url, err := candidate.Resolve(ctx)
		if err != nil || url == "" {
			if err != nil && !isNotFound(err) {
				logger.Warn("Candidate resolver failed",
					"source", candidate.Source,
					"error", err)
			}
			continue
		}
		url = upgradeScheme(url)

		if candidate.Terminal {
			logger.Info("Falling back to inline placeholder")
			return url
		}
		if IsPlaceholder(url) {
			// A placeholder is never re-validated or re-chosen mid-chain.
			continue
		}
		if seen[url] {
			continue
		}
		seen[url] = true

		if s.validator.IsLoadable(ctx, url) {
			logger.Info("Cover resolved",
				"source", candidate.Source)
			return url
		}
		logger.Debug("Candidate failed validation",
			"source", candidate.Source)
	}

	// Unreachable while the chain keeps its terminal entry, but PickCover
	// must stay total.
	return InlinePlaceholder(kind, NormalizeQuery(kind, title))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrCoverNotFound)
}
