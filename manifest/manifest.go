// Package manifest describes chunked datasets: element type, chunk shape,
// grid shape and the chunk file of every grid cell.
//
// A dataset directory holds versioned manifest files and a CURRENT pointer
// naming the live one, so a rewrite never exposes a half-written manifest.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/chunkarray/blobstore"
	"github.com/hupe1980/chunkarray/codec"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	CurrentVersion   = 1
)

// ErrInvalidManifest is returned for manifests that fail validation.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest describes a chunked dataset.
type Manifest struct {
	Version int `json:"version"`
	// ID increases with every Save.
	ID uint64 `json:"id"`
	// DType names the element type ("float32", "int16", ...).
	DType string `json:"dtype"`
	// Compression names the chunk codec ("none", "lz4", "zstd").
	Compression string `json:"compression"`
	// ChunkShape is the shape of every chunk buffer.
	ChunkShape []int `json:"chunk_shape"`
	// GridShape is the shape of the chunk grid.
	GridShape []int `json:"grid_shape"`
	// Files lists chunk blob names in row-major grid order, relative to the
	// dataset directory.
	Files []string `json:"files"`
	// Attrs holds free-form user metadata.
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Shape returns the full array shape (chunk axes then grid axes).
func (m *Manifest) Shape() []int {
	return slices.Concat(m.ChunkShape, m.GridShape)
}

// Validate checks the structural invariants of the manifest.
func (m *Manifest) Validate() error {
	if m.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalidManifest, m.Version, CurrentVersion)
	}
	if m.DType == "" {
		return fmt.Errorf("%w: missing dtype", ErrInvalidManifest)
	}
	for _, d := range m.ChunkShape {
		if d <= 0 {
			return fmt.Errorf("%w: chunk shape %v must be positive", ErrInvalidManifest, m.ChunkShape)
		}
	}
	cells := 1
	for _, d := range m.GridShape {
		if d <= 0 {
			return fmt.Errorf("%w: grid shape %v must be positive", ErrInvalidManifest, m.GridShape)
		}
		cells *= d
	}
	if len(m.Files) != cells {
		return fmt.Errorf("%w: %d files for grid %v (want %d)", ErrInvalidManifest, len(m.Files), m.GridShape, cells)
	}
	for i, f := range m.Files {
		if f == "" {
			return fmt.Errorf("%w: empty file name at %d", ErrInvalidManifest, i)
		}
	}
	return nil
}

// Marshal encodes m with c (codec.Default when nil).
func Marshal(m *Manifest, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(m)
}

// Unmarshal decodes and validates a manifest.
func Unmarshal(data []byte, c codec.Codec) (*Manifest, error) {
	if c == nil {
		c = codec.Default
	}
	var m Manifest
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Store manages the manifests of one dataset directory in a blob store.
type Store struct {
	blobs blobstore.BlobStore
	dir   string
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a new manifest store for the dataset under dir.
// A nil codec selects codec.Default.
func NewStore(blobs blobstore.BlobStore, dir string, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{
		blobs: blobs,
		dir:   strings.Trim(dir, "/"),
		codec: c,
	}
}

// Blobs returns the underlying blob store.
func (s *Store) Blobs() blobstore.BlobStore { return s.blobs }

// Dir returns the dataset directory.
func (s *Store) Dir() string { return s.dir }

// Path joins name onto the dataset directory.
func (s *Store) Path(name string) string {
	if s.dir == "" || s.dir == "." {
		return name
	}
	return path.Join(s.dir, name)
}

// Load loads the current manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := blobstore.ReadAll(ctx, s.blobs, s.Path(CurrentFileName))
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(string(current))
	data, err := blobstore.ReadAll(ctx, s.blobs, s.Path(name))
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, s.codec)
}

// Save validates m, writes it as a new manifest file and then swings the
// CURRENT pointer to it. m.ID is incremented once both writes succeed.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *m
	next.Version = CurrentVersion
	if err := next.Validate(); err != nil {
		return err
	}
	next.ID++

	data, err := Marshal(&next, s.codec)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%06d.json", ManifestFileName, next.ID)
	if err := s.blobs.Put(ctx, s.Path(filename), data); err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, s.Path(CurrentFileName), []byte(filename)); err != nil {
		return err
	}

	m.ID = next.ID
	m.Version = next.Version
	return nil
}
