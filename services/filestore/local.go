// Package filestore implements blob storage on the local filesystem.
package filestore

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
)

type localStore struct {
	root string
}

var _ core.FileStore = (*localStore)(nil)

func NewLocalStore(root string) (*localStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating file store root")
	}
	return &localStore{root: root}, nil
}

// resolve joins bucket and path under the root, refusing path escapes.
func (st *localStore) resolve(bucket, path string) (string, error) {
	full := filepath.Join(st.root, bucket, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(st.root)+string(os.PathSeparator)) {
		return "", errors.Errorf("invalid file path %q", path)
	}
	return full, nil
}

func (st *localStore) Save(bucket, path string, r io.Reader) (int64, error) {
	full, err := st.resolve(bucket, path)
	if err != nil {
		return 0, err
	}
	if err = os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, errors.Wrap(err, "creating blob directory")
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, errors.Wrap(err, "creating blob")
	}
	defer func() { _ = f.Close() }()

	size, err := io.Copy(f, r)
	if err != nil {
		return 0, errors.Wrap(err, "writing blob")
	}
	return size, nil
}

func (st *localStore) Open(bucket, path string) (io.ReadCloser, error) {
	full, err := st.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, errors.Wrap(err, "opening blob")
	}
	return f, nil
}

func (st *localStore) Remove(bucket string, paths ...string) error {
	for _, path := range paths {
		full, err := st.resolve(bucket, path)
		if err != nil {
			return err
		}
		if err = os.Remove(full); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "removing blob")
		}
	}
	return nil
}
