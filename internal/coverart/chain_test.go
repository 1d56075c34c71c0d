package coverart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbydex/coverart-go/internal/conf"
)

func testSettings() *conf.Settings {
	settings := &conf.Settings{Locales: []string{"ru", "en"}}
	settings.Validator.TimeoutMs = 2000
	return settings
}

func chainSources(chain []Candidate) []string {
	sources := make([]string, 0, len(chain))
	for _, c := range chain {
		sources = append(sources, c.Source)
	}
	return sources
}

func TestBuildChainOrder(t *testing.T) {
	t.Parallel()
	s := NewService(testSettings(), nil, nil)

	chain := s.BuildChain(KindBook, "Dune", "")
	assert.Equal(t, []string{
		"openlibrary", "openverse", "wikipedia", "imagesearch", "customsearch",
		"synthetic", "synthetic", "placeholder",
	}, chainSources(chain))

	chain = s.BuildChain(KindMovie, "Alien", "")
	assert.Equal(t, "itunes", chain[0].Source)

	chain = s.BuildChain(KindGame, "Doom", "")
	assert.Equal(t, "itunes", chain[0].Source)
}

func TestBuildChainPurchaseHasNoAuthoritativeResolver(t *testing.T) {
	t.Parallel()
	s := NewService(testSettings(), nil, nil)

	chain := s.BuildChain(KindPurchase, "Lamp", "")
	assert.Equal(t, []string{
		"openverse", "wikipedia", "imagesearch", "customsearch",
		"synthetic", "synthetic", "placeholder",
	}, chainSources(chain))
}

func TestBuildChainTerminalPlaceholder(t *testing.T) {
	t.Parallel()
	s := NewService(testSettings(), nil, nil)

	chain := s.BuildChain(KindBook, "Dune", "")
	require.NotEmpty(t, chain)
	last := chain[len(chain)-1]
	assert.True(t, last.Terminal)
	for _, c := range chain[:len(chain)-1] {
		assert.False(t, c.Terminal)
	}

	url, err := last.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, IsPlaceholder(url))
}

func TestBuildChainExistingCoverIsLowestPriorityRealFallback(t *testing.T) {
	t.Parallel()
	s := NewService(testSettings(), nil, nil)

	chain := s.BuildChain(KindBook, "Dune", "https://old.example.com/c.jpg")
	sources := chainSources(chain)
	assert.Equal(t, []string{
		"openlibrary", "openverse", "wikipedia", "imagesearch", "customsearch",
		"existing", "synthetic", "synthetic", "placeholder",
	}, sources)
}

func TestBuildChainExcludesPlaceholderAndBlankExistingCovers(t *testing.T) {
	t.Parallel()
	s := NewService(testSettings(), nil, nil)

	chain := s.BuildChain(KindBook, "Dune", InlinePlaceholder(KindBook, "Dune"))
	assert.NotContains(t, chainSources(chain), "existing")

	chain = s.BuildChain(KindBook, "Dune", "   ")
	assert.NotContains(t, chainSources(chain), "existing")
}

func TestBuildChainNormalizesTitleForResolvers(t *testing.T) {
	t.Parallel()
	s := NewService(testSettings(), nil, nil)

	chain := s.BuildChain(KindBook, "Книга Война и мир", "")
	last := chain[len(chain)-1]
	url, err := last.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InlinePlaceholder(KindBook, "Война и мир"), url)
}
