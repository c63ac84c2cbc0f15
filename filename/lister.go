package filename

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hupe1980/chunkarray/blobstore"
)

// Lister returns the names of the regular entries of a directory.
// Names are base names; their order does not matter.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, dir string) ([]string, error)

// List implements Lister.
func (f ListerFunc) List(ctx context.Context, dir string) ([]string, error) { return f(ctx, dir) }

// FSLister lists directories of a billy.Filesystem (osfs, memfs, chroots...).
type FSLister struct {
	fs billy.Filesystem
}

// NewFSLister creates a Lister over fs.
func NewFSLister(fs billy.Filesystem) *FSLister {
	return &FSLister{fs: fs}
}

// List implements Lister. Subdirectories are skipped.
func (l *FSLister) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	infos, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

// localLister lists the local filesystem. Relative directories are resolved
// against the working directory before reaching the root-anchored osfs.
type localLister struct {
	fs *FSLister
}

func newLocalLister() *localLister {
	return &localLister{fs: NewFSLister(osfs.New("/"))}
}

func (l *localLister) List(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return l.fs.List(ctx, abs)
}

// BlobLister lists a "directory" of a blob store: the blobs directly below the
// dir prefix.
type BlobLister struct {
	store blobstore.BlobStore
}

// NewBlobLister creates a Lister over store.
func NewBlobLister(store blobstore.BlobStore) *BlobLister {
	return &BlobLister{store: store}
}

// List implements Lister. Nested blobs (names containing further "/") are
// skipped.
func (l *BlobLister) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.Trim(dir, "/")
	if prefix == "." {
		prefix = ""
	}
	if prefix != "" {
		prefix += "/"
	}
	keys, err := l.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
