// Package datastore provides the persistence layer for collection items and
// the cover resolver cache, backed by gorm.
package datastore

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/hobbydex/coverart-go/internal/errors"
	"github.com/hobbydex/coverart-go/internal/logging"
)

// Interface is the store contract consumed by the cover pipeline. Methods
// must tolerate concurrent calls for distinct item ids.
type Interface interface {
	Open() error
	Close() error

	ListItems(kind string) ([]MediaItem, error)
	UpdateItemCover(kind string, id uint, coverURL string) error

	GetCoverCache(source, query string) (*CoverCache, error)
	SaveCoverCache(entry *CoverCache) error
}

// DataStore implements Interface on top of a gorm DB handle.
type DataStore struct {
	DB     *gorm.DB
	logger *slog.Logger
}

func (ds *DataStore) log() *slog.Logger {
	if ds.logger == nil {
		ds.logger = logging.ForService("datastore")
	}
	return ds.logger
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	return sqlDB.Close()
}

// ListItems returns all collection items of the given kind.
func (ds *DataStore) ListItems(kind string) ([]MediaItem, error) {
	var items []MediaItem
	if err := ds.DB.Where("kind = ?", kind).Order("id").Find(&items).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "list_items").
			Context("kind", kind).
			Build()
	}
	return items, nil
}

// UpdateItemCover persists a new cover URL for one item.
func (ds *DataStore) UpdateItemCover(kind string, id uint, coverURL string) error {
	result := ds.DB.Model(&MediaItem{}).
		Where("id = ? AND kind = ?", id, kind).
		Update("cover_url", coverURL)
	if result.Error != nil {
		return errors.New(result.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "update_item_cover").
			Context("kind", kind).
			Context("item_id", id).
			Build()
	}
	if result.RowsAffected == 0 {
		return errors.Newf("item not found: kind=%s id=%d", kind, id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	return nil
}

// GetCoverCache returns the cached resolver result for (source, query), or
// nil if no row exists. Freshness is the caller's concern.
func (ds *DataStore) GetCoverCache(source, query string) (*CoverCache, error) {
	var entry CoverCache
	err := ds.DB.Where("source = ? AND query = ?", source, query).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_cover_cache").
			Context("source", source).
			Build()
	}
	return &entry, nil
}

// SaveCoverCache inserts or overwrites the cached result for (source, query).
// Last write wins; entries are idempotent per key so races are harmless.
func (ds *DataStore) SaveCoverCache(entry *CoverCache) error {
	if entry.CapturedAt.IsZero() {
		entry.CapturedAt = time.Now()
	}

	var existing CoverCache
	err := ds.DB.Where("source = ? AND query = ?", entry.Source, entry.Query).First(&existing).Error
	switch {
	case err == nil:
		entry.ID = existing.ID
		err = ds.DB.Save(entry).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ds.DB.Create(entry).Error
	}
	if err != nil {
		ds.log().Debug("Failed to save cover cache entry",
			"source", entry.Source,
			"query", entry.Query,
			"error", err)
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_cover_cache").
			Context("source", entry.Source).
			Build()
	}
	return nil
}

// performAutoMigration runs gorm auto-migration for all models.
func performAutoMigration(db *gorm.DB) error {
	if err := db.AutoMigrate(&MediaItem{}, &CoverCache{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Build()
	}
	return nil
}
