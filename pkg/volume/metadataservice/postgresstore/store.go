// Package postgresstore is a PostgreSQL-backed metadataservice.Client.
// Grounded on dittofs's pkg/store/metadata/postgres package: jackc/pgx/v5
// for the driver and pool, golang-migrate for schema management, one row
// per outer range partition with the extent list stored as JSONB.
package postgresstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice"
)

// Store is a PostgreSQL-backed metadataservice.Client.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL, runs pending migrations, and returns a Store.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("postgresstore: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if err := runMigrations(ctx, cfg.ConnectionString(), logger); err != nil {
		return nil, fmt.Errorf("postgresstore: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("postgresstore: parse pool config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgresstore: create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// LoadInode implements metadataservice.Client.
func (s *Store) LoadInode(ctx context.Context, inodeID uint64) (extentcache.InodeExtents, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT range_start, extents FROM inode_extents WHERE inode_id = $1`, int64(inodeID))
	if err != nil {
		return nil, fmt.Errorf("postgresstore: query inode %d: %w", inodeID, err)
	}
	defer rows.Close()

	result := extentcache.InodeExtents{}
	found := false
	for rows.Next() {
		found = true
		var rangeStart int64
		var raw []byte
		if err := rows.Scan(&rangeStart, &raw); err != nil {
			return nil, fmt.Errorf("postgresstore: scan row: %w", err)
		}
		var entries []extentcache.InodeExtent
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("postgresstore: decode extents: %w", err)
		}
		result[uint64(rangeStart)] = entries
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgresstore: iterate rows: %w", err)
	}
	if !found {
		return nil, metadataservice.ErrNotFound
	}
	return result, nil
}

// SaveInode implements metadataservice.Client. It replaces every range row
// for the inode inside one transaction.
func (s *Store) SaveInode(ctx context.Context, inodeID uint64, extents extentcache.InodeExtents) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgresstore: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM inode_extents WHERE inode_id = $1`, int64(inodeID)); err != nil {
		return fmt.Errorf("postgresstore: clear existing rows: %w", err)
	}

	batch := &pgx.Batch{}
	for rangeStart, entries := range extents {
		raw, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("postgresstore: encode extents: %w", err)
		}
		batch.Queue(
			`INSERT INTO inode_extents (inode_id, range_start, extents) VALUES ($1, $2, $3)`,
			int64(inodeID), int64(rangeStart), raw,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range extents {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("postgresstore: insert range row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgresstore: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgresstore: commit: %w", err)
	}
	return nil
}

var _ metadataservice.Client = (*Store)(nil)
