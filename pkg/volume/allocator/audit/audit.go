// Package audit records every grant an Allocator makes, for debugging and
// capacity review. It wraps any allocator.Allocator and persists each grant
// as a row via gorm.io/gorm, the same ORM dittofs reaches for in its
// control-plane store — here repurposed as an observability sink rather
// than a primary data store.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/curvefs/curvefs-client/pkg/volume/allocator"
	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// Grant is one audited allocation, identified the way dittofs's
// control-plane resources are: a generated UUID rather than a database
// autoincrement, so grant IDs stay stable across a restore from backup.
type Grant struct {
	ID             string `gorm:"primaryKey"`
	LogicalOffset  uint64
	Length         uint64
	PhysicalOffset uint64
	GrantedAt      time.Time
}

// TableName pins the audit table name regardless of gorm's pluralization
// rules.
func (Grant) TableName() string { return "allocator_grants" }

// Allocator wraps an allocator.Allocator, recording every successful grant.
type Allocator struct {
	inner allocator.Allocator
	db    *gorm.DB
}

// Open connects to PostgreSQL via the given DSN, migrates the audit table,
// and returns an Allocator wrapping inner.
func Open(dsn string, inner allocator.Allocator) (*Allocator, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Grant{}); err != nil {
		return nil, err
	}
	return &Allocator{inner: inner, db: db}, nil
}

// Allocate implements allocator.Allocator, delegating to inner and then
// recording the grant. A logging failure never fails the caller's
// allocation — the audit log is a debugging aid, not the allocator's
// source of truth.
func (a *Allocator) Allocate(ctx context.Context, req extentcache.AllocInfo) (extentcache.PExtent, error) {
	ext, err := a.inner.Allocate(ctx, req)
	if err != nil {
		return ext, err
	}

	grant := Grant{
		ID:             uuid.New().String(),
		LogicalOffset:  ext.LogicalOffset,
		Length:         ext.Length,
		PhysicalOffset: ext.PhysicalOffset,
		GrantedAt:      time.Now(),
	}
	_ = a.db.WithContext(ctx).Create(&grant)

	return ext, nil
}

var _ allocator.Allocator = (*Allocator)(nil)
