package manifest

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/endpoint"
)

// FileStore keeps a manifest on the local file system.
// The format follows the file extension.
type FileStore struct {
	Path string
}

var _ endpoint.Loader = (*FileStore)(nil)

// NewFileStore creates a file store for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the manifest. A missing file is an empty manifest.
func (s *FileStore) Load(ctx context.Context) ([]endpoint.Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.New("E130").WithDetail("reading " + s.Path).Wrap(err)
	}

	eps, err := Decode(data, FormatFor(s.Path))
	if err != nil {
		if offset, ok := syntaxOffset(err); ok {
			line, col := lineCol(data, offset)
			if e, isCoded := err.(*errors.Error); isCoded {
				return nil, e.WithLocation(s.Path, line, col)
			}
		}
		return nil, err
	}
	return eps, nil
}

// Save writes the manifest, replacing the file atomically.
func (s *FileStore) Save(ctx context.Context, eps []endpoint.Endpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(eps, FormatFor(s.Path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New("E131").WithDetail("creating " + dir).Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return errors.New("E131").WithDetail("writing " + s.Path).Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.New("E131").WithDetail("writing " + s.Path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.New("E131").WithDetail("writing " + s.Path).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return errors.New("E131").WithDetail("writing " + s.Path).Wrap(err)
	}
	return nil
}

// String returns the manifest location.
func (s *FileStore) String() string {
	return s.Path
}
