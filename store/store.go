// Package store is the persistence layer over gorm. All business queries
// live here so that handlers, the digest pipeline and the dispatcher share
// one set of collaborators and tests can swap in fakes.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced category, post or comment does
// not exist (or exists under a different route namespace). Handlers map it
// to HTTP 404.
var ErrNotFound = errors.New("record not found")

// ErrDailyQuotaExceeded is returned when an author hits the daily post cap.
var ErrDailyQuotaExceeded = errors.New("daily post quota exceeded")

type Store struct {
	DB *gorm.DB

	// Quota guards the per-author daily post cap. Nil disables the cap,
	// which is only acceptable in tests.
	Quota QuotaStore
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func NewStoreWithQuota(db *gorm.DB, quota QuotaStore) *Store {
	return &Store{DB: db, Quota: quota}
}
