package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"stdinspector/internal/inspecterr"
)

// LocalSource reads a directory on disk. It never touches the network.
type LocalSource struct {
	root string
}

// OpenLocal returns a Repository over dir. dir must be an existing directory.
func OpenLocal(dir string) (*Repository, error) {
	src, err := NewLocalSource(dir)
	if err != nil {
		return nil, err
	}
	return New("local:"+src.root, src), nil
}

func NewLocalSource(dir string) (*LocalSource, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, inspecterr.Configuration("invalid directory %q: %v", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, inspecterr.Configuration("directory does not exist: %s", dir)
	}
	return &LocalSource{root: abs}, nil
}

func (s *LocalSource) Root() string {
	return s.root
}

func (s *LocalSource) ListFiles(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root {
				return err
			}
			// Unreadable subtrees are skipped rather than failing the listing.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if d.Name() == ".git" && p != s.root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, inspecterr.Access("cannot list %s: %v", s.root, err)
	}
	return files, nil
}

func (s *LocalSource) ReadFile(_ context.Context, name string) ([]byte, error) {
	clean := path.Clean("/" + name)
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, inspecterr.NotFound("file not found: %s", name)
		}
		return nil, err
	}
	return content, nil
}
