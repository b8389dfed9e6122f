// Package store is the record store used by the service: create, read,
// update, delete and filtered listing over the camp collections, backed by
// gorm.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStale reports a conditional update whose expected value no longer
	// matched.
	ErrStale = errors.New("record changed concurrently")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Page is a one-based page request.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	page, perPage := p.Page, p.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return db.Offset((page - 1) * perPage).Limit(perPage)
}
