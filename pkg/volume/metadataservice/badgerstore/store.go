// Package badgerstore is an embedded metadataservice.Client backed by
// dgraph-io/badger/v4. Grounded on dittofs's pkg/metadata/store/badger key
// namespace convention (short prefix + JSON value, one key per entity) and
// its View/Update transaction idiom.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice"
)

// keyInode namespaces extent-map entries as "e:<inodeID>" (big-endian
// uint64), distinct from any other key space this database may grow.
const prefixExtents = "e:"

func keyInode(inodeID uint64) []byte {
	key := make([]byte, len(prefixExtents)+8)
	copy(key, prefixExtents)
	binary.BigEndian.PutUint64(key[len(prefixExtents):], inodeID)
	return key
}

// Store is a badger-backed metadataservice.Client.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a badger database at dir and returns a Store.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadInode implements metadataservice.Client.
func (s *Store) LoadInode(_ context.Context, inodeID uint64) (extentcache.InodeExtents, error) {
	var extents extentcache.InodeExtents
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyInode(inodeID))
		if err == badger.ErrKeyNotFound {
			return metadataservice.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get inode %d: %w", inodeID, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &extents)
		})
	})
	if err != nil {
		return nil, err
	}
	return extents, nil
}

// SaveInode implements metadataservice.Client.
func (s *Store) SaveInode(_ context.Context, inodeID uint64, extents extentcache.InodeExtents) error {
	data, err := json.Marshal(extents)
	if err != nil {
		return fmt.Errorf("badgerstore: encode inode %d: %w", inodeID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyInode(inodeID), data)
	})
}

var _ metadataservice.Client = (*Store)(nil)
