package parquet

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no table was recorded at the path yet.
	ErrNotFound = errors.New("table file not found")
	// ErrStorageRead means the file exists but is unreadable or not a valid table.
	ErrStorageRead = errors.New("failed to read table file")
	// ErrStorageWrite means the table could not be encoded or written.
	ErrStorageWrite = errors.New("failed to write table file")
)

// StorageError carries the file a storage operation failed on.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func readError(path string, err error) error {
	return &StorageError{Op: "read", Path: path, Err: fmt.Errorf("%w: %v", ErrStorageRead, err)}
}

func writeError(path string, err error) error {
	return &StorageError{Op: "write", Path: path, Err: fmt.Errorf("%w: %v", ErrStorageWrite, err)}
}
