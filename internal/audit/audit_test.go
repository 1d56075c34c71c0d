package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbydex/coverart-go/internal/coverart"
	"github.com/hobbydex/coverart-go/internal/datastore"
)

type fakeStore struct {
	mu      sync.Mutex
	items   map[string][]datastore.MediaItem
	updates map[string]map[uint]string
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:   make(map[string][]datastore.MediaItem),
		updates: make(map[string]map[uint]string),
	}
}

func (f *fakeStore) add(kind string, id uint, title, coverURL string) {
	f.items[kind] = append(f.items[kind], datastore.MediaItem{
		ID:       id,
		Kind:     kind,
		Title:    title,
		CoverURL: coverURL,
	})
}

func (f *fakeStore) ListItems(kind string) ([]datastore.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]datastore.MediaItem(nil), f.items[kind]...), nil
}

func (f *fakeStore) UpdateItemCover(kind string, id uint, coverURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates[kind] == nil {
		f.updates[kind] = make(map[uint]string)
	}
	f.updates[kind][id] = coverURL
	return nil
}

// fakePicker records the peak number of simultaneous PickCover calls.
type fakePicker struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int
	delay    time.Duration
	pick     func(kind coverart.Kind, title, existingCover string) string
}

func (p *fakePicker) PickCover(_ context.Context, kind coverart.Kind, title, existingCover string) string {
	p.mu.Lock()
	p.calls++
	p.inFlight++
	if p.inFlight > p.peak {
		p.peak = p.inFlight
	}
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if p.pick != nil {
		return p.pick(kind, title, existingCover)
	}
	return "https://resolved.example.com/" + title + ".jpg"
}

func TestNeedsCover(t *testing.T) {
	t.Parallel()

	assert.True(t, NeedsCover(&datastore.MediaItem{CoverURL: ""}))
	assert.True(t, NeedsCover(&datastore.MediaItem{CoverURL: "   "}))
	assert.True(t, NeedsCover(&datastore.MediaItem{CoverURL: "data:image/svg+xml;base64,AAAA"}))
	assert.False(t, NeedsCover(&datastore.MediaItem{CoverURL: "https://example.com/cover.jpg"}))
}

func TestRunRepairsMissingAndPlaceholderCovers(t *testing.T) {
	store := newFakeStore()
	store.add("book", 1, "Dune", "")
	store.add("book", 2, "Solaris", coverart.InlinePlaceholder(coverart.KindBook, "Solaris"))
	store.add("book", 3, "Neuromancer", "https://example.com/n.jpg")
	store.add("movie", 4, "Alien", "")

	picker := &fakePicker{}
	result := NewRunner(store, picker, nil).Run(context.Background(), -1, 2)

	assert.Equal(t, 3, result.TotalChecked)
	assert.Equal(t, 3, result.TotalUpdated)
	assert.Equal(t, KindStats{Checked: 2, Updated: 2}, result.PerKind[coverart.KindBook])
	assert.Equal(t, KindStats{Checked: 1, Updated: 1}, result.PerKind[coverart.KindMovie])
	assert.Equal(t, KindStats{}, result.PerKind[coverart.KindGame])

	assert.Equal(t, "https://resolved.example.com/Dune.jpg", store.updates["book"][1])
	assert.Equal(t, "https://resolved.example.com/Solaris.jpg", store.updates["book"][2])
	assert.NotContains(t, store.updates["book"], uint(3), "items with working covers are never touched")
}

func TestRunConcurrencyBound(t *testing.T) {
	store := newFakeStore()
	for i := uint(1); i <= 10; i++ {
		store.add("book", i, fmt.Sprintf("Book %d", i), "")
	}

	picker := &fakePicker{delay: 20 * time.Millisecond}
	result := NewRunner(store, picker, nil).Run(context.Background(), -1, 2)

	assert.Equal(t, 10, result.TotalChecked)
	assert.LessOrEqual(t, picker.peak, 2, "in-flight resolutions must never exceed the configured bound")
	assert.Greater(t, picker.peak, 1, "the pool should actually run items in parallel")
}

func TestRunZeroLimitProcessesNothing(t *testing.T) {
	store := newFakeStore()
	store.add("book", 1, "Dune", "")

	picker := &fakePicker{}
	result := NewRunner(store, picker, nil).Run(context.Background(), 0, 2)

	assert.Zero(t, result.TotalChecked)
	assert.Zero(t, result.TotalUpdated)
	assert.Zero(t, picker.calls)
	for _, kind := range coverart.AllKinds() {
		assert.Equal(t, KindStats{}, result.PerKind[kind])
	}
}

func TestRunPositiveLimitCapsQueue(t *testing.T) {
	store := newFakeStore()
	for i := uint(1); i <= 5; i++ {
		store.add("book", i, fmt.Sprintf("Book %d", i), "")
	}

	result := NewRunner(store, &fakePicker{}, nil).Run(context.Background(), 2, 2)
	assert.Equal(t, 2, result.TotalChecked)
}

func TestRunUnchangedCoverDoesNotCountAsUpdated(t *testing.T) {
	store := newFakeStore()
	placeholder := coverart.InlinePlaceholder(coverart.KindBook, "Dune")
	store.add("book", 1, "Dune", placeholder)

	picker := &fakePicker{
		pick: func(_ coverart.Kind, _, existingCover string) string { return existingCover },
	}
	result := NewRunner(store, picker, nil).Run(context.Background(), -1, 2)

	assert.Equal(t, 1, result.TotalChecked)
	assert.Zero(t, result.TotalUpdated)
	assert.Empty(t, store.updates["book"])
}

func TestRunEmptyStoreSpawnsNoWorkers(t *testing.T) {
	picker := &fakePicker{}
	result := NewRunner(newFakeStore(), picker, nil).Run(context.Background(), -1, 4)

	assert.Zero(t, result.TotalChecked)
	assert.Zero(t, picker.calls)
}

func TestRunListFailureSkipsKindWithoutAborting(t *testing.T) {
	store := newFakeStore()
	store.listErr = fmt.Errorf("database locked")

	result := NewRunner(store, &fakePicker{}, nil).Run(context.Background(), -1, 2)
	require.NotNil(t, result)
	assert.Zero(t, result.TotalChecked)
}

func TestRunContainsPickerPanics(t *testing.T) {
	store := newFakeStore()
	store.add("book", 1, "Dune", "")
	store.add("book", 2, "Solaris", "")

	picker := &fakePicker{
		pick: func(_ coverart.Kind, title, _ string) string {
			if title == "Dune" {
				panic("resolver exploded")
			}
			return "https://resolved.example.com/ok.jpg"
		},
	}
	result := NewRunner(store, picker, nil).Run(context.Background(), -1, 1)

	assert.Equal(t, 2, result.TotalChecked, "a panicking item still counts as checked")
	assert.Equal(t, 1, result.TotalUpdated)
	assert.Equal(t, "https://resolved.example.com/ok.jpg", store.updates["book"][2])
}
