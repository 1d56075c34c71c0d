// Package coverart resolves collection item titles to cover image URLs by
// chaining external search backends, validating candidates and caching
// results per source.
package coverart

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/hobbydex/coverart-go/internal/errors"
	"github.com/hobbydex/coverart-go/internal/logging"
)

// Package-level logger specific to the coverart service
var (
	serviceLogger   *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "coverart.log")
	serviceLevelVar.Set(slog.LevelInfo)

	serviceLogger, closeLogger, err = logging.NewFileLogger(logFilePath, "coverart", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize coverart file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		serviceLogger = slog.New(fbHandler).With("service", "coverart")
		closeLogger = func() error { return nil }
	}
}

// SetDebugLogging switches the service log level between debug and info.
func SetDebugLogging(enabled bool) {
	if enabled {
		serviceLevelVar.Set(slog.LevelDebug)
	} else {
		serviceLevelVar.Set(slog.LevelInfo)
	}
}

// ErrCoverNotFound indicates a resolver produced no candidate for a query.
// It is an expected condition, not a failure.
var ErrCoverNotFound = errors.NewStd("no cover found")

// Resolver is a single-source lookup strategy mapping a normalized query to
// at most one candidate URL. Implementations must not propagate network or
// parsing errors past their boundary: any failure maps to ErrCoverNotFound
// or an absorbed enhanced error, never a panic.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, kind Kind, query string) (string, error)
}

// placeholderPrefix marks self-generated inline covers. Anything carrying
// this prefix is treated as a missing cover by the audit filter and is never
// re-validated mid-chain.
const placeholderPrefix = "data:"

// IsPlaceholder reports whether url is a self-generated inline placeholder.
func IsPlaceholder(url string) bool {
	return len(url) >= len(placeholderPrefix) && url[:len(placeholderPrefix)] == placeholderPrefix
}

type contextKey string

// backgroundOperationKey marks resolutions driven by scheduled audits so
// that resolvers apply their background rate limiters.
const backgroundOperationKey contextKey = "background_operation"

// WithBackgroundOperation marks ctx as belonging to a background audit pass.
func WithBackgroundOperation(ctx context.Context) context.Context {
	return context.WithValue(ctx, backgroundOperationKey, true)
}

// isBackgroundOperation reports whether ctx belongs to a background pass.
func isBackgroundOperation(ctx context.Context) bool {
	bg, ok := ctx.Value(backgroundOperationKey).(bool)
	return ok && bg
}
