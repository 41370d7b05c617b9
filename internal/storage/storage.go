// Package storage persists raw dataset files. Uploaded bytes are written
// once under an opaque key and read back for analysis; the SQLite metastore
// holds everything else.
package storage

import "context"

// BlobStore stores and retrieves raw dataset bytes by key.
// Implementations: LocalStore (default), S3Store.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// LocalPath materialises the blob as a file on the local filesystem and
	// returns its path. The DuckDB loader reads datasets through file paths.
	LocalPath(ctx context.Context, key string) (string, error)
}
