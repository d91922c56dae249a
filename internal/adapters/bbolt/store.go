// Package bbolt implements the ports.Storage interface using bbolt (embedded B+ tree).
// All keyword sets live under one top-level "sets" bucket. Each set gets its own
// sub-bucket holding a compressed keyword blob and a small metadata record.
// Writes are transactional: a crash mid-write cannot corrupt previously
// committed data.
package bbolt

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/corey/acmatch/internal/ports"
)

// Bucket keys
var (
	bucketSets  = []byte("sets")
	keyKeywords = []byte("keywords")
	keyMeta     = []byte("meta")
)

// setMeta is the gob-encoded metadata stored next to a keyword blob.
type setMeta struct {
	Source    string
	UpdatedAt int64
	Count     int
}

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.Storage = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "bbolt open")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSet persists a keyword set, replacing any set with the same name.
func (s *Store) SaveSet(set *ports.KeywordSet) error {
	if set == nil {
		return errors.New("nil keyword set")
	}
	if set.Name == "" {
		return errors.New("keyword set name required")
	}

	blob, err := encodeKeywords(set.Keywords)
	if err != nil {
		return errors.Wrap(err, "encode keywords")
	}
	updated := set.UpdatedAt
	if updated == 0 {
		updated = time.Now().Unix()
	}
	meta, err := encodeGob(setMeta{Source: set.Source, UpdatedAt: updated, Count: len(set.Keywords)})
	if err != nil {
		return errors.Wrap(err, "encode metadata")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		sets, err := tx.CreateBucketIfNotExists(bucketSets)
		if err != nil {
			return err
		}
		// Drop the old set so a shorter list never leaves stale keys behind.
		if err := sets.DeleteBucket([]byte(set.Name)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		sb, err := sets.CreateBucket([]byte(set.Name))
		if err != nil {
			return err
		}
		if err := sb.Put(keyKeywords, blob); err != nil {
			return err
		}
		return sb.Put(keyMeta, meta)
	})
}

// LoadSet retrieves a keyword set by name.
// Returns nil, nil if the set does not exist.
func (s *Store) LoadSet(name string) (*ports.KeywordSet, error) {
	var blob, meta []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		sb := sets.Bucket([]byte(name))
		if sb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := sb.Get(keyKeywords); v != nil {
			blob = make([]byte, len(v))
			copy(blob, v)
		}
		if v := sb.Get(keyMeta); v != nil {
			meta = make([]byte, len(v))
			copy(meta, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}

	keywords, err := decodeKeywords(blob)
	if err != nil {
		return nil, errors.Wrapf(err, "decode set %q", name)
	}
	set := &ports.KeywordSet{Name: name, Keywords: keywords}
	if meta != nil {
		var m setMeta
		if err := decodeGob(meta, &m); err != nil {
			return nil, errors.Wrapf(err, "decode set %q metadata", name)
		}
		set.Source = m.Source
		set.UpdatedAt = m.UpdatedAt
	}
	return set, nil
}

// ListSets returns the names of all stored sets, sorted.
func (s *Store) ListSets() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		return sets.ForEachBucket(func(k []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSet removes a keyword set.
// Idempotent: deleting a nonexistent set is not an error.
func (s *Store) DeleteSet(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		if err := sets.DeleteBucket([]byte(name)); err == bolt.ErrBucketNotFound {
			return nil // idempotent
		} else {
			return err
		}
	})
}
