// Package orm is a thin chainable layer over gorm used by the repositories
// for listing, pagination and cached reads.
package orm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/cache"
)

type Query struct {
	db *gorm.DB
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// On starts a query on db, which may be a transaction.
func On(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

// Paginate counts the matching rows and loads page into dest. page and
// limit are clamped to sane values.
func (q *Query) Paginate(dest interface{}, page, limit int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var total int64
	if err := q.db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	if err := q.db.Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}, nil
}

// Cache serves dest from store when present, otherwise runs fill, stores
// the result for ttl and returns it. fill receives the query's db.
func (q *Query) Cache(ctx context.Context, store cache.Store, key string, ttl time.Duration, dest interface{}, fill func(db *gorm.DB) error) (hit bool, err error) {
	if store.Get(ctx, key, dest) {
		return true, nil
	}

	if fill == nil {
		fill = func(db *gorm.DB) error { return db.Find(dest).Error }
	}
	if err := fill(q.db.WithContext(ctx)); err != nil {
		return false, err
	}

	_ = store.Set(ctx, key, dest, ttl)
	return false, nil
}
