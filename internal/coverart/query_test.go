package coverart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kind  Kind
		title string
		want  string
	}{
		{"plain title untouched", KindBook, "Dune", "Dune"},
		{"english prefix stripped", KindBook, "Book Dune", "Dune"},
		{"prefix match is case insensitive", KindBook, "BOOK Dune", "Dune"},
		{"russian prefix stripped", KindBook, "Книга Война и мир", "Война и мир"},
		{"surrounding whitespace trimmed", KindMovie, "  Film Alien  ", "Alien"},
		{"prefix of another kind kept", KindBook, "Film Dune", "Film Dune"},
		{"doubled prefix fully stripped", KindBook, "Book Book Club", "Club"},
		{"mixed-locale doubled prefix", KindBook, "Книга book Дюна", "Дюна"},
		{"trailing bare prefix word kept", KindMovie, "Movie Film", "Film"},
		{"prefix without separator kept", KindBook, "Bookkeeper", "Bookkeeper"},
		{"game prefix stripped", KindGame, "игра Tetris", "Tetris"},
		{"purchase prefix stripped", KindPurchase, "Покупка лампа", "лампа"},
		{"empty title", KindBook, "   ", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeQuery(tc.kind, tc.title)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, NormalizeQuery(tc.kind, got), "normalization must be idempotent")
		})
	}
}

func TestUpgradeScheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com/a.jpg", upgradeScheme("http://example.com/a.jpg"))
	assert.Equal(t, "https://example.com/a.jpg", upgradeScheme("https://example.com/a.jpg"))
	assert.Equal(t, "data:image/svg+xml;base64,AAAA", upgradeScheme("data:image/svg+xml;base64,AAAA"))
	assert.Equal(t, "", upgradeScheme(""))
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "war-and-peace", slugify("War and Peace"))
	assert.Equal(t, "война-и-мир", slugify("Война и мир"))
	assert.Equal(t, "half-life-2", slugify("Half-Life  2!"))
	assert.Equal(t, "", slugify("!!!"))
}

func TestTitleVariants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Dune", "Dune (book)", "Dune (novel)"}, titleVariants(KindBook, "Dune"))
	assert.Equal(t, []string{"Alien", "Alien (film)"}, titleVariants(KindMovie, "Alien"))
	assert.Equal(t, []string{"Doom", "Doom (video game)"}, titleVariants(KindGame, "Doom"))
	assert.Equal(t, []string{"Lamp"}, titleVariants(KindPurchase, "Lamp"))
}
