package core

import "io"

// FileStore is the blob namespace backing file attachments (report cards).
// Paths are bucket-relative; implementations own the physical layout.
type FileStore interface {
	Save(bucket, path string, r io.Reader) (size int64, err error)
	Open(bucket, path string) (io.ReadCloser, error)
	Remove(bucket string, paths ...string) error
}
