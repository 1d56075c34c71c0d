package coverart

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG returns a minimal valid PNG for validation fixtures.
func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestValidatorAcceptsDecodableImage(t *testing.T) {
	v := NewValidator(2*time.Second, nil)
	httpmock.ActivateNonDefault(v.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/good.png",
		httpmock.NewBytesResponder(http.StatusOK, encodePNG(t)))

	assert.True(t, v.IsLoadable(context.Background(), "https://img.example.com/good.png"))
}

func TestValidatorRejectsNonImageBody(t *testing.T) {
	v := NewValidator(2*time.Second, nil)
	httpmock.ActivateNonDefault(v.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/page.html",
		httpmock.NewStringResponder(http.StatusOK, "<html>not an image</html>"))

	assert.False(t, v.IsLoadable(context.Background(), "https://img.example.com/page.html"))
}

func TestValidatorRejectsErrorStatus(t *testing.T) {
	v := NewValidator(2*time.Second, nil)
	httpmock.ActivateNonDefault(v.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://img.example.com/missing.png",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	assert.False(t, v.IsLoadable(context.Background(), "https://img.example.com/missing.png"))
}

func TestValidatorRejectsUnfetchableURL(t *testing.T) {
	v := NewValidator(2*time.Second, nil)
	httpmock.ActivateNonDefault(v.httpClient)
	defer httpmock.DeactivateAndReset()

	assert.False(t, v.IsLoadable(context.Background(), "https://img.example.com/unregistered.png"))
	assert.False(t, v.IsLoadable(context.Background(), ""))
	assert.False(t, v.IsLoadable(context.Background(), "ftp://img.example.com/file.png"))
}

func TestValidatorAcceptsInlineSVGPlaceholder(t *testing.T) {
	t.Parallel()
	v := NewValidator(2*time.Second, nil)

	uri := InlinePlaceholder(KindBook, "Dune")
	assert.True(t, v.IsLoadable(context.Background(), uri))
}

func TestDecodeDataURI(t *testing.T) {
	t.Parallel()

	pngURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t))
	assert.True(t, decodeDataURI(pngURI))

	assert.True(t, decodeDataURI("data:image/svg+xml;base64,PHN2Zy8+"))
	assert.False(t, decodeDataURI("data:image/png;base64,"))
	assert.False(t, decodeDataURI("data:image/png;base64,!!!not-base64!!!"))
	assert.False(t, decodeDataURI("data:text/plain;base64,aGVsbG8="))
	assert.False(t, decodeDataURI("data:image/png"))
}
