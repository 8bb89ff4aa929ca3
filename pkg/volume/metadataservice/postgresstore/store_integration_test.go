//go:build integration

package postgresstore_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice/postgresstore"
)

// newPostgresContainer starts a disposable PostgreSQL container for the
// duration of the test using the dedicated testcontainers postgres module,
// or connects to an externally provided one when POSTGRES_HOST is set.
// Grounded on dittofs's test/e2e/framework.newPostgresHelper: same
// postgres.Run/WithDatabase/WithUsername/WithPassword call shape, same
// double-occurrence readiness log (Postgres prints "ready to accept
// connections" once during bootstrap and once when fully up).
func newPostgresContainer(t *testing.T) postgresstore.Config {
	t.Helper()
	ctx := context.Background()

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		return postgresstore.Config{
			Host:     host,
			Port:     5432,
			Database: "curvefs_client_integration",
			User:     "curvefs_client",
			Password: "curvefs_client",
			SSLMode:  "disable",
		}
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("curvefs_client_integration"),
		postgres.WithUsername("curvefs_client"),
		postgres.WithPassword("curvefs_client"),
		testcontainers.WithWaitStrategyAndDeadline(time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return postgresstore.Config{
		Host:     host,
		Port:     port.Int(),
		Database: "curvefs_client_integration",
		User:     "curvefs_client",
		Password: "curvefs_client",
		SSLMode:  "disable",
	}
}

func TestStore_SaveAndLoadInode(t *testing.T) {
	cfg := newPostgresContainer(t)
	ctx := context.Background()

	store, err := postgresstore.Open(ctx, cfg, slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	const inodeID = uint64(7)
	extents := extentcache.InodeExtents{
		0: {
			{FSOffset: 0, Length: 4096, VolumeOffset: 1024},
		},
	}

	if err := store.SaveInode(ctx, inodeID, extents); err != nil {
		t.Fatalf("SaveInode: %v", err)
	}

	got, err := store.LoadInode(ctx, inodeID)
	if err != nil {
		t.Fatalf("LoadInode: %v", err)
	}
	if len(got[0]) != 1 || got[0][0].VolumeOffset != 1024 {
		t.Fatalf("unexpected extents after round trip: %+v", got)
	}
}

func TestStore_LoadInode_NotFound(t *testing.T) {
	cfg := newPostgresContainer(t)
	ctx := context.Background()

	store, err := postgresstore.Open(ctx, cfg, slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := store.LoadInode(ctx, 999); err == nil {
		t.Fatal("expected an error loading an inode with no rows")
	}
}
