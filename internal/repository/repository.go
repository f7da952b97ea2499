// Package repository hides the difference between hosted Git APIs, pinned git
// commits and plain directories behind one cached list/read contract.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"stdinspector/internal/inspecterr"
)

// Source is a backend that can enumerate and read files of one fixed
// snapshot. Sources are not expected to cache; Repository does.
type Source interface {
	ListFiles(ctx context.Context) ([]string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FileSet is a set of slash-separated paths relative to the repository root.
type FileSet map[string]struct{}

func NewFileSet(paths ...string) FileSet {
	fs := make(FileSet, len(paths))
	for _, p := range paths {
		fs[p] = struct{}{}
	}
	return fs
}

func (fs FileSet) Has(path string) bool {
	_, ok := fs[path]
	return ok
}

func (fs FileSet) Len() int {
	return len(fs)
}

func (fs FileSet) Sorted() []string {
	out := make([]string, 0, len(fs))
	for p := range fs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Stats counts the fetches that reached the Source.
type Stats struct {
	ListCalls int
	ReadCalls int
}

// Repository is a handle on one snapshot. The file listing is fetched at
// most once and each file content at most once until Invalidate is called.
type Repository struct {
	name string
	src  Source

	group singleflight.Group

	mu       sync.Mutex
	files    FileSet
	contents map[string][]byte
	stats    Stats
}

func New(name string, src Source) *Repository {
	return &Repository{
		name:     name,
		src:      src,
		contents: make(map[string][]byte),
	}
}

func (r *Repository) Name() string {
	return r.name
}

func (r *Repository) Files(ctx context.Context) (FileSet, error) {
	r.mu.Lock()
	if r.files != nil {
		files := r.files
		r.mu.Unlock()
		return files, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do("files", func() (any, error) {
		r.mu.Lock()
		if r.files != nil {
			files := r.files
			r.mu.Unlock()
			return files, nil
		}
		r.stats.ListCalls++
		r.mu.Unlock()

		paths, err := r.src.ListFiles(ctx)
		if err != nil {
			return nil, err
		}
		files := NewFileSet(paths...)
		logger.Debugf("%s: listed %d files", r.name, files.Len())

		r.mu.Lock()
		r.files = files
		r.mu.Unlock()
		return files, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(FileSet), nil
}

// ReadFile returns the content of path. Paths absent from the file listing
// fail with inspecterr.ErrNotFound without reaching the Source.
func (r *Repository) ReadFile(ctx context.Context, path string) ([]byte, error) {
	files, err := r.Files(ctx)
	if err != nil {
		return nil, err
	}
	if !files.Has(path) {
		return nil, inspecterr.NotFound("file %q is not in %s", path, r.name)
	}

	r.mu.Lock()
	if content, ok := r.contents[path]; ok {
		r.mu.Unlock()
		return content, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do("file:"+path, func() (any, error) {
		r.mu.Lock()
		if content, ok := r.contents[path]; ok {
			r.mu.Unlock()
			return content, nil
		}
		r.stats.ReadCalls++
		r.mu.Unlock()

		content, err := r.src.ReadFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		r.mu.Lock()
		r.contents[path] = content
		r.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops the cached listing and contents.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = nil
	r.contents = make(map[string][]byte)
}

func (r *Repository) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
