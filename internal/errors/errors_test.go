package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCategoriesAndContext(t *testing.T) {
	err := Newf("resolver %s failed", "openverse").
		Component("coverart").
		Category(CategoryNetwork).
		Context("query", "war and peace").
		Build()

	require.Error(t, err)
	assert.Equal(t, "resolver openverse failed", err.Error())
	assert.Equal(t, "coverart", err.GetComponent())
	assert.Equal(t, string(CategoryNetwork), err.GetCategory())
	assert.Equal(t, "war and peace", err.GetContext()["query"])
}

func TestDefaultCategoryIsGeneric(t *testing.T) {
	err := New(NewStd("boom")).Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestIsCategory(t *testing.T) {
	err := Newf("row missing").Category(CategoryNotFound).Build()
	assert.True(t, IsNotFound(err))
	assert.False(t, IsCategory(err, CategoryNetwork))
}

func TestUnwrapPreservesSentinel(t *testing.T) {
	sentinel := NewStd("no cover")
	err := New(sentinel).Category(CategoryNotFound).Build()
	assert.True(t, Is(err, sentinel))
}

func TestCategorizeURL(t *testing.T) {
	assert.Equal(t, "https-endpoint", categorizeURL("https://example.com/a.jpg"))
	assert.Equal(t, "http-endpoint", categorizeURL("http://example.com/a.jpg"))
	assert.Equal(t, "data-uri", categorizeURL("data:image/svg+xml;base64,AAAA"))
	assert.Equal(t, "other-protocol", categorizeURL("ftp://example.com"))
}
