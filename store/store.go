package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"

	"github.com/vparc/vpack/slice"
)

const (
	bucketDocs  = "docs"
	bucketIndex = "index"
)

// Store persists built VPack documents keyed by a caller-supplied key or
// by the content hash of the document, plus one secondary index over a
// single top-level object attribute.
type Store struct {
	st        storage
	indexAttr string
	bdb       *bbolt.DB // nil for the in-memory backend
}

// Open opens (creating if necessary) a bbolt-backed Store at path,
// maintaining a secondary index over the named top-level object
// attribute of every document with a string value for it.
func Open(path string, indexAttr string) (*Store, error) {
	bdb, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{st: newBoltStorage(bdb), indexAttr: indexAttr, bdb: bdb}, nil
}

// OpenMem returns a transient in-memory Store, for tests.
func OpenMem(indexAttr string) *Store {
	return &Store{st: newMemStorage(), indexAttr: indexAttr}
}

// Close closes the underlying storage.
func (s *Store) Close() error { return s.st.Close() }

// HashKey returns the content-addressed key for doc: its XXH64 digest,
// big-endian so bbolt's byte-order key sort groups nothing meaningful
// but keys stay a fixed, compact width.
func HashKey(doc []byte) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], xxhash.Sum64(doc))
	return key[:]
}

// Put stores doc (a complete, encoded VPack value) under key, updating
// the secondary index if doc is an object carrying the indexed
// attribute as a string.
func (s *Store) Put(key, doc []byte) error {
	tx, err := s.st.BeginTx(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	docs, err := tx.CreateBucket(bucketDocs, "")
	if err != nil {
		return err
	}
	if old := docs.Get(key); old != nil {
		s.deindex(tx, key, old)
	}
	if err := docs.Put(key, doc); err != nil {
		return err
	}
	if err := s.reindex(tx, key, doc); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves the document stored under key.
func (s *Store) Get(key []byte) (doc []byte, ok bool, err error) {
	tx, err := s.st.BeginTx(false)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()
	docs := tx.Bucket(bucketDocs, "")
	if docs == nil {
		return nil, false, nil
	}
	v := docs.Get(key)
	if v == nil {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Delete removes the document stored under key, if any.
func (s *Store) Delete(key []byte) error {
	tx, err := s.st.BeginTx(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	docs := tx.Bucket(bucketDocs, "")
	if docs == nil {
		return tx.Commit()
	}
	if old := docs.Get(key); old != nil {
		s.deindex(tx, key, old)
	}
	if err := docs.Delete(key); err != nil {
		return err
	}
	return tx.Commit()
}

// FindByAttr returns the keys of every stored document whose indexed
// attribute equals value.
func (s *Store) FindByAttr(value string) ([][]byte, error) {
	tx, err := s.st.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	idx := tx.Bucket(bucketIndex, "")
	if idx == nil {
		return nil, nil
	}
	prefix := indexKey(value, nil)
	var keys [][]byte
	c := idx.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k[len(prefix):]...))
	}
	return keys, nil
}

func (s *Store) reindex(tx storageTx, key, doc []byte) error {
	sv, ok := s.attrValue(doc)
	if !ok {
		return nil
	}
	idx, err := tx.CreateBucket(bucketIndex, "")
	if err != nil {
		return err
	}
	return idx.Put(indexKey(sv, key), nil)
}

func (s *Store) deindex(tx storageTx, key, oldDoc []byte) {
	sv, ok := s.attrValue(oldDoc)
	if !ok {
		return
	}
	idx := tx.Bucket(bucketIndex, "")
	if idx == nil {
		return
	}
	idx.Delete(indexKey(sv, key))
}

func (s *Store) attrValue(doc []byte) (string, bool) {
	if s.indexAttr == "" {
		return "", false
	}
	v, found, err := slice.New(doc).Get(s.indexAttr)
	if err != nil || !found || !v.IsString() {
		return "", false
	}
	sv, err := v.StringValue()
	if err != nil {
		return "", false
	}
	return sv, true
}

// indexKey concatenates attrValue and docKey with a NUL separator, so a
// prefix scan over attrValue's encoding finds every document sharing it.
func indexKey(attrValue string, docKey []byte) []byte {
	out := make([]byte, 0, len(attrValue)+1+len(docKey))
	out = append(out, attrValue...)
	out = append(out, 0)
	return append(out, docKey...)
}
