package blob

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// LocalStore keeps objects as files under a root directory.
type LocalStore struct {
	root   string
	logger *slog.Logger
}

func NewLocalStore(root string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs, logger: logger}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.NotFound("file", key)
	}
	if err != nil {
		return nil, common.Persistence("read file", err)
	}
	return b, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return common.Persistence("create file dir", err)
	}
	// each writer gets its own temp file so concurrent puts to one key never mix bytes
	f, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return common.Persistence("create temp file", err)
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp, 0o644)
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return common.Persistence("write file", werr)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return common.Persistence("write file", err)
	}
	s.logger.Debug("blob.local.put", "key", key, "bytes", len(data))
	return nil
}
