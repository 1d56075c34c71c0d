package coverart

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Decoders registered for validation probes.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

const (
	defaultValidationTimeout = 12 * time.Second
	maxImageProbeBytes       = 8 << 20
)

// Validator confirms that a candidate URL actually decodes as an image
// within a deadline. HTTP reachability alone is not enough: the body must
// parse as a known image format.
type Validator struct {
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.CoverArtMetrics
}

// NewValidator creates a validator with the given probe deadline. A
// non-positive timeout selects the 12s default.
func NewValidator(timeout time.Duration, m *metrics.CoverArtMetrics) *Validator {
	if timeout <= 0 {
		timeout = defaultValidationTimeout
	}
	return &Validator{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		metrics:    m,
	}
}

// IsLoadable reports whether url loads and decodes as an image within the
// validator's deadline. Decode failures and timeouts both resolve to false;
// the call never hangs past the deadline and never panics.
func (v *Validator) IsLoadable(ctx context.Context, url string) bool {
	start := time.Now()
	ok := v.probe(ctx, url)
	if v.metrics != nil {
		v.metrics.ObserveValidationDuration(time.Since(start).Seconds())
		if !ok {
			v.metrics.IncrementValidationFailures()
		}
	}
	return ok
}

func (v *Validator) probe(ctx context.Context, url string) bool {
	switch {
	case url == "":
		return false
	case strings.HasPrefix(url, "data:"):
		return decodeDataURI(url)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return v.probeHTTP(ctx, url)
	default:
		return false
	}
}

// probeHTTP fetches the URL under the validator deadline and attempts a
// header-level image decode of the body.
func (v *Validator) probeHTTP(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", buildUserAgent())
	req.Header.Set("Accept", "image/*")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		serviceLogger.Debug("Validation fetch failed", "url_len", len(url), "error", err)
		return false
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			serviceLogger.Debug("Failed to close validation response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageProbeBytes))
	if err != nil {
		return false
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(body)); err != nil {
		serviceLogger.Debug("Candidate body is not a decodable image",
			"content_type", resp.Header.Get("Content-Type"),
			"body_size", len(body),
			"error", err)
		return false
	}
	return true
}

// decodeDataURI validates inline data URIs. SVG payloads from our own
// placeholder generator are accepted structurally; raster payloads must
// decode with the registered image decoders.
func decodeDataURI(uri string) bool {
	meta, payload, found := strings.Cut(uri, ",")
	if !found || payload == "" {
		return false
	}

	if strings.HasPrefix(meta, "data:image/svg+xml") {
		return true
	}
	if !strings.HasPrefix(meta, "data:image/") {
		return false
	}

	raw := []byte(payload)
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return false
		}
		raw = decoded
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(raw))
	return err == nil
}
