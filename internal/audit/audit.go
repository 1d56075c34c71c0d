// Package audit implements the scan-and-repair pass over the collection:
// it finds items whose cover is missing or a self-generated placeholder and
// re-resolves them under bounded concurrency.
package audit

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/hobbydex/coverart-go/internal/coverart"
	"github.com/hobbydex/coverart-go/internal/datastore"
	"github.com/hobbydex/coverart-go/internal/logging"
	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

// Package-level logger specific to the audit service
var (
	serviceLogger   *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "audit.log")
	serviceLevelVar.Set(slog.LevelInfo)

	serviceLogger, _, err = logging.NewFileLogger(logFilePath, "audit", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize audit file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		serviceLogger = slog.New(fbHandler).With("service", "audit")
	}
}

const defaultConcurrency = 4

// CoverPicker resolves one item's cover; satisfied by *coverart.Service.
type CoverPicker interface {
	PickCover(ctx context.Context, kind coverart.Kind, title, existingCover string) string
}

// ItemStore is the slice of the datastore the auditor needs.
type ItemStore interface {
	ListItems(kind string) ([]datastore.MediaItem, error)
	UpdateItemCover(kind string, id uint, coverURL string) error
}

// KindStats holds per-kind counters for one audit run.
type KindStats struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}

// Result is the aggregate report of one audit run. It is created fresh per
// invocation and never persisted.
type Result struct {
	TotalChecked int                         `json:"totalChecked"`
	TotalUpdated int                         `json:"totalUpdated"`
	PerKind      map[coverart.Kind]KindStats `json:"perKind"`
}

// Runner drives audit passes over the item store.
type Runner struct {
	store   ItemStore
	picker  CoverPicker
	metrics *metrics.CoverArtMetrics
}

// NewRunner creates an audit runner. metrics may be nil.
func NewRunner(store ItemStore, picker CoverPicker, m *metrics.CoverArtMetrics) *Runner {
	return &Runner{store: store, picker: picker, metrics: m}
}

// NeedsCover reports whether an item should be repaired: its cover is unset,
// whitespace, or a self-generated placeholder. A working real cover is never
// selected, so the audit cannot replace it with something worse.
func NeedsCover(item *datastore.MediaItem) bool {
	cover := strings.TrimSpace(item.CoverURL)
	return cover == "" || coverart.IsPlaceholder(cover)
}

// Run performs one audit pass over every kind. limitPerKind caps how many
// items are repaired per kind: zero disables processing entirely and
// returns all-zero counts, a negative value means no cap. concurrency
// bounds how many items are resolved in flight at any instant (non-positive
// selects the default of 4). Failures never propagate to the caller: a
// failing item is logged, counted as checked, and the batch moves on.
func (r *Runner) Run(ctx context.Context, limitPerKind, concurrency int) *Result {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	result := &Result{PerKind: make(map[coverart.Kind]KindStats, len(coverart.AllKinds()))}
	if limitPerKind == 0 {
		for _, kind := range coverart.AllKinds() {
			result.PerKind[kind] = KindStats{}
		}
		serviceLogger.Info("Audit limit is zero, nothing to do")
		return result
	}
	ctx = coverart.WithBackgroundOperation(ctx)

	serviceLogger.Info("Starting cover audit",
		"limit_per_kind", limitPerKind,
		"concurrency", concurrency)

	for _, kind := range coverart.AllKinds() {
		checked, updated := r.auditKind(ctx, kind, limitPerKind, concurrency)
		result.PerKind[kind] = KindStats{Checked: checked, Updated: updated}
		result.TotalChecked += checked
		result.TotalUpdated += updated
	}

	serviceLogger.Info("Cover audit finished",
		"total_checked", result.TotalChecked,
		"total_updated", result.TotalUpdated)
	return result
}

// auditKind repairs one kind's queue with a worker pool bounded by
// concurrency. A zero-length queue spawns no workers and returns
// immediately.
func (r *Runner) auditKind(ctx context.Context, kind coverart.Kind, limitPerKind, concurrency int) (checked, updated int) {
	items, err := r.store.ListItems(string(kind))
	if err != nil {
		serviceLogger.Error("Failed to list items, skipping kind",
			"kind", kind,
			"error", err)
		return 0, 0
	}

	queue := make([]datastore.MediaItem, 0, len(items))
	for i := range items {
		if NeedsCover(&items[i]) {
			queue = append(queue, items[i])
		}
	}
	if limitPerKind > 0 && len(queue) > limitPerKind {
		queue = queue[:limitPerKind]
	}
	if len(queue) == 0 {
		return 0, 0
	}

	serviceLogger.Info("Auditing kind",
		"kind", kind,
		"total_items", len(items),
		"queued", len(queue))

	var checkedCount, updatedCount atomic.Int64
	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup

	for i := range queue {
		if err := sem.Acquire(ctx, 1); err != nil {
			serviceLogger.Warn("Audit interrupted",
				"kind", kind,
				"error", err)
			break
		}
		wg.Add(1)
		go func(item datastore.MediaItem) {
			defer wg.Done()
			defer sem.Release(1)
			if r.processItem(ctx, kind, &item) {
				updatedCount.Add(1)
			}
			checkedCount.Add(1)
		}(queue[i])
	}
	wg.Wait()

	return int(checkedCount.Load()), int(updatedCount.Load())
}

// processItem resolves and persists one item's cover. Any failure, panics
// included, is contained here so one bad item cannot abort the batch.
func (r *Runner) processItem(ctx context.Context, kind coverart.Kind, item *datastore.MediaItem) (didUpdate bool) {
	defer func() {
		if rec := recover(); rec != nil {
			serviceLogger.Error("Panic while auditing item",
				"kind", kind,
				"item_id", item.ID,
				"panic", rec)
			didUpdate = false
		}
	}()

	if r.metrics != nil {
		r.metrics.IncrementAuditChecked(string(kind))
	}

	picked := r.picker.PickCover(ctx, kind, item.Title, item.CoverURL)
	if picked == item.CoverURL {
		return false
	}

	if err := r.store.UpdateItemCover(string(kind), item.ID, picked); err != nil {
		serviceLogger.Error("Failed to persist cover",
			"kind", kind,
			"item_id", item.ID,
			"error", err)
		return false
	}

	if r.metrics != nil {
		r.metrics.IncrementAuditUpdated(string(kind))
	}
	serviceLogger.Debug("Cover updated",
		"kind", kind,
		"item_id", item.ID)
	return true
}
