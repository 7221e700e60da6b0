// Package store persists built VPack documents in a bbolt-backed key-value
// store, keyed by caller-supplied key or content hash, with one secondary
// index over a single object attribute.
package store

// storage represents a key-value storage backend (Bolt, in-memory, ...).
// It exists so Store's document/index logic can be exercised against a
// transient in-memory backend in tests without touching disk.
type storage interface {
	BeginTx(writable bool) (storageTx, error)
	Close() error
}

// storageTx represents a storage transaction.
type storageTx interface {
	Writable() bool

	// Bucket returns a bucket, or nil if it doesn't exist.
	Bucket(name, sub string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name, sub string) (storageBucket, error)

	Commit() error
	Rollback() error
}

// storageBucket represents a bucket (sorted key-value collection).
type storageBucket interface {
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() storageCursor
}

// storageCursor iterates over a sorted bucket.
type storageCursor interface {
	Seek(seek []byte) (key, value []byte)
	Next() (key, value []byte)
}
