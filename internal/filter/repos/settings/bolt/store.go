// Package bolt implements the settings store on bbolt.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

var (
	bucketSettings = []byte("settings")
	bucketMeta     = []byte("meta")

	metaVersion = []byte("version")
	metaUpdated = []byte("updated")
)

// boltStore implements settings.Store. Each key holds one JSON value.
type boltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (settings.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSettings); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db, now: time.Now}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Get(ctx context.Context, keys ...string) (settings.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := settings.Record{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		for _, k := range keys {
			if v := b.Get([]byte(k)); v != nil {
				// values are only valid for the life of the transaction
				cp := make([]byte, len(v))
				copy(cp, v)
				rec[k] = cp
			}
		}
		return nil
	})
	return rec, err
}

func (s *boltStore) Set(ctx context.Context, rec settings.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for k := range rec {
		if err := settings.CheckKey(k); err != nil {
			return err
		}
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		for k, v := range rec {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		var version uint64
		if v := meta.Get(metaVersion); len(v) == 8 {
			version = binary.BigEndian.Uint64(v)
		}
		vbuf := make([]byte, 8)
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(vbuf, version+1)
		binary.BigEndian.PutUint64(ubuf, uint64(s.now().Unix()))
		if err := meta.Put(metaVersion, vbuf); err != nil {
			return err
		}
		return meta.Put(metaUpdated, ubuf)
	})
}

func (s *boltStore) Meta() settings.StoreMeta {
	var m settings.StoreMeta
	_ = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if v := b.Get(metaVersion); len(v) == 8 {
			m.Version = binary.BigEndian.Uint64(v)
		}
		if v := b.Get(metaUpdated); len(v) == 8 {
			m.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return m
}

var _ settings.Store = (*boltStore)(nil)
