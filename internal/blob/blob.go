// Package blob stores whole documents under string keys.
//
// Backends replace a value atomically on Put, so a reader sees either the
// previous document or the new one, never a partial write.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotExist is returned (wrapped) by Get when a key has never been written.
var ErrNotExist = errors.New("blob: key does not exist")

// Store is a file-like key-value store holding one document per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Backend is a Store that holds resources which must be released.
type Backend interface {
	Store
	io.Closer
}

// Options selects and configures a backend.
type Options struct {
	Driver     string // file, sqlite or gcs
	Dir        string
	SQLitePath string
	Bucket     string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "file":
		return NewFileStore(opts.Dir), nil
	case "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath)
	case "gcs":
		return NewGCSStore(ctx, opts.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func validKey(key string) error {
	if key == "" {
		return errors.New("blob: empty key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("blob: invalid key %q", key)
	}
	return nil
}
