package coverart

import (
	"context"
	"strings"
)

// Candidate is one entry of a resolver chain: a named strategy producing at
// most one candidate URL. Terminal marks the guaranteed inline placeholder
// that ends every chain.
type Candidate struct {
	Source   string
	Terminal bool
	Resolve  func(ctx context.Context) (string, error)
}

// staticCandidate wraps a precomputed URL as a chain entry.
func staticCandidate(source, url string) Candidate {
	return Candidate{
		Source:  source,
		Resolve: func(context.Context) (string, error) { return url, nil },
	}
}

func resolverCandidate(r Resolver, kind Kind, query string) Candidate {
	return Candidate{
		Source: r.Name(),
		Resolve: func(ctx context.Context) (string, error) {
			return r.Resolve(ctx, kind, query)
		},
	}
}

// BuildChain assembles the ordered candidate list for one item. The order is
// fixed: the kind's authoritative resolver, the open-media index, the
// encyclopedia, generic image search, custom search, then the existing
// non-placeholder cover (lowest-priority real fallback, retried in case a
// transient failure caused it to be flagged), then deterministic synthetic
// URLs, and finally the inline placeholder which always succeeds.
func (s *Service) BuildChain(kind Kind, title, existingCover string) []Candidate {
	query := NormalizeQuery(kind, title)
	chain := make([]Candidate, 0, 9)

	// Purchases have no authoritative catalog and skip straight to the
	// generic resolvers.
	switch kind {
	case KindBook:
		chain = append(chain, resolverCandidate(s.openLibrary, kind, query))
	case KindMovie, KindGame:
		chain = append(chain, resolverCandidate(s.itunes, kind, query))
	}

	chain = append(chain,
		resolverCandidate(s.openverse, kind, query),
		resolverCandidate(s.wikipedia, kind, query),
		resolverCandidate(s.imageSearch, kind, query),
		resolverCandidate(s.customSearch, kind, query),
	)

	if existing := strings.TrimSpace(existingCover); existing != "" && !IsPlaceholder(existing) {
		chain = append(chain, staticCandidate("existing", existing))
	}

	for _, u := range syntheticURLs(kind, query) {
		chain = append(chain, staticCandidate("synthetic", u))
	}

	chain = append(chain, Candidate{
		Source:   "placeholder",
		Terminal: true,
		Resolve: func(context.Context) (string, error) {
			return InlinePlaceholder(kind, query), nil
		},
	})

	return chain
}
