// Package volume assembles the extent cache and its collaborators from a
// loaded configuration: the block I/O engine, the allocator, and the
// metadata service, selected per the backend named in each section of
// config.VolumeConfig. Grounded on dittofs's pkg/controlplane/runtime
// construction of adapters and stores from persisted configuration.
package volume

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/curvefs/curvefs-client/pkg/config"
	"github.com/curvefs/curvefs-client/pkg/volume/allocator"
	"github.com/curvefs/curvefs-client/pkg/volume/allocator/audit"
	"github.com/curvefs/curvefs-client/pkg/volume/allocator/memoryallocator"
	allocatorrest "github.com/curvefs/curvefs-client/pkg/volume/allocator/restclient"
	"github.com/curvefs/curvefs-client/pkg/volume/blockio"
	"github.com/curvefs/curvefs-client/pkg/volume/blockio/memoryblockio"
	"github.com/curvefs/curvefs-client/pkg/volume/blockio/s3blockio"
	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice"
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice/badgerstore"
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice/postgresstore"
	metadatarest "github.com/curvefs/curvefs-client/pkg/volume/metadataservice/restclient"
)

// Volume bundles a configured extent cache together with the collaborators
// it was built against, so the caller can close them down together.
type Volume struct {
	Cache           *extentcache.Cache
	BlockIO         blockio.Engine
	Allocator       allocator.Allocator
	MetadataService metadataservice.Client

	closers []func() error
}

// Close releases every collaborator that owns a resource (database handle,
// open file, connection pool), in reverse construction order.
func (v *Volume) Close() error {
	var firstErr error
	for i := len(v.closers) - 1; i >= 0; i-- {
		if err := v.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build constructs a Volume from cfg: an extent cache using cfg.Alignment,
// and the block I/O, allocator, and metadata service backends selected by
// cfg.Volume. metrics may be nil, in which case the cache collects no
// metrics.
func Build(ctx context.Context, cfg *config.Config, metrics extentcache.Metrics, logger *slog.Logger) (*Volume, error) {
	opts := extentcache.Options{
		BlockSize:    uint64(cfg.Alignment.BlockSize),
		PreallocSize: uint64(cfg.Alignment.PreallocSize),
		RangeSize:    uint64(cfg.Alignment.RangeSize),
	}
	if opts.BlockSize == 0 {
		opts = extentcache.DefaultOptions()
	}

	cache := extentcache.NewWithOptions(opts)
	if metrics != nil {
		cache.SetMetrics(metrics)
	}

	v := &Volume{Cache: cache}

	blockIO, err := buildBlockIO(ctx, cfg.Volume.BlockIO)
	if err != nil {
		return nil, fmt.Errorf("volume: building block I/O engine: %w", err)
	}
	v.BlockIO = blockIO
	v.closers = append(v.closers, blockIO.Close)

	alloc, allocCloser, err := buildAllocator(cfg.Volume.Allocator)
	if err != nil {
		return nil, fmt.Errorf("volume: building allocator: %w", err)
	}
	v.Allocator = alloc
	if allocCloser != nil {
		v.closers = append(v.closers, allocCloser)
	}

	metaSvc, metaCloser, err := buildMetadataService(ctx, cfg.Volume.MetadataService, logger)
	if err != nil {
		return nil, fmt.Errorf("volume: building metadata service: %w", err)
	}
	v.MetadataService = metadataservice.NewCoalesce(metaSvc)
	if metaCloser != nil {
		v.closers = append(v.closers, metaCloser)
	}

	return v, nil
}

func buildBlockIO(ctx context.Context, cfg config.BlockIOConfig) (blockio.Engine, error) {
	switch cfg.Backend {
	case "memory":
		return memoryblockio.New(), nil
	case "s3":
		return s3blockio.NewFromConfig(ctx, s3blockio.Config{
			Bucket:         cfg.S3.Bucket,
			Key:            cfg.S3.Key,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown block I/O backend: %q", cfg.Backend)
	}
}

func buildAllocator(cfg config.AllocatorConfig) (allocator.Allocator, func() error, error) {
	var base allocator.Allocator
	switch cfg.Backend {
	case "memory":
		base = memoryallocator.New(uint64(cfg.Memory.VolumeSize))
	case "rest":
		client := allocatorrest.New(cfg.Rest.BaseURL)
		if cfg.Rest.Token != "" {
			client = client.WithToken(cfg.Rest.Token)
		}
		base = client
	default:
		return nil, nil, fmt.Errorf("unknown allocator backend: %q", cfg.Backend)
	}

	if !cfg.Audit.Enabled {
		return base, nil, nil
	}

	audited, err := audit.Open(cfg.Audit.DSN, base)
	if err != nil {
		return nil, nil, fmt.Errorf("opening allocator audit log: %w", err)
	}
	return audited, nil, nil
}

func buildMetadataService(ctx context.Context, cfg config.MetadataServiceConfig, logger *slog.Logger) (metadataservice.Client, func() error, error) {
	switch cfg.Backend {
	case "badger":
		store, err := badgerstore.Open(cfg.Badger.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "postgres":
		pgCfg := postgresstore.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}
		pgCfg.ApplyDefaults()
		if err := pgCfg.Validate(); err != nil {
			return nil, nil, err
		}
		store, err := postgresstore.Open(ctx, pgCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { store.Close(); return nil }, nil
	case "rest":
		client := metadatarest.New(cfg.Rest.BaseURL)
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown metadata service backend: %q", cfg.Backend)
	}
}
