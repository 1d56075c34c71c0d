package datastore

import "time"

// MediaItem represents one entry of the user's collection. The cover pipeline
// only reads Title/CoverURL and writes CoverURL; everything else is owned by
// the collection CRUD.
type MediaItem struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Kind     string    `gorm:"index;not null" json:"kind"`
	Title    string    `gorm:"not null" json:"title"`
	CoverURL string    `json:"coverUrl"`
	AddedAt  time.Time `json:"addedAt"`
}

// CoverCache represents one persisted resolver result. Query is stored
// lower-cased; (Source, Query) is the natural key and rows are overwritten
// in place on refresh.
type CoverCache struct {
	ID         uint      `gorm:"primaryKey"`
	Source     string    `gorm:"uniqueIndex:idx_cover_cache_source_query;not null"`
	Query      string    `gorm:"uniqueIndex:idx_cover_cache_source_query;not null"`
	URL        string    // resolved image URL
	CapturedAt time.Time `gorm:"index"` // when the result was fetched
}
