package manifest

import (
	"context"
	"testing"

	"github.com/hupe1980/chunkarray/blobstore"
	"github.com/hupe1980/chunkarray/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *Manifest {
	return &Manifest{
		Version:     CurrentVersion,
		DType:       "float32",
		Compression: "zstd",
		ChunkShape:  []int{4, 5},
		GridShape:   []int{2, 3},
		Files:       []string{"c_0_0", "c_0_1", "c_0_2", "c_1_0", "c_1_1", "c_1_2"},
	}
}

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Manifest)
	}{
		{"version", func(m *Manifest) { m.Version = 99 }},
		{"dtype", func(m *Manifest) { m.DType = "" }},
		{"chunk shape", func(m *Manifest) { m.ChunkShape = []int{4, 0} }},
		{"grid shape", func(m *Manifest) { m.GridShape = []int{-1, 3} }},
		{"file count", func(m *Manifest) { m.Files = m.Files[:5] }},
		{"empty name", func(m *Manifest) { m.Files[2] = "" }},
	}

	require.NoError(t, testManifest().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManifest()
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidManifest)
		})
	}
}

func TestManifest_Shape(t *testing.T) {
	assert.Equal(t, []int{4, 5, 2, 3}, testManifest().Shape())
}

func TestMarshal_Codecs(t *testing.T) {
	m := testManifest()
	m.Attrs = map[string]string{"source": "sim"}

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}, nil} {
		data, err := Marshal(m, c)
		require.NoError(t, err)

		got, err := Unmarshal(data, codec.JSON{})
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"), nil)
	assert.ErrorIs(t, err, ErrInvalidManifest)

	_, err = Unmarshal([]byte(`{"version":1,"dtype":"float32","grid_shape":[2],"files":["a"]}`), nil)
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	s := NewStore(blobs, "data/run1/", nil)

	assert.Equal(t, "data/run1", s.Dir())

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	m := testManifest()
	require.NoError(t, s.Save(ctx, m))
	assert.Equal(t, uint64(1), m.ID)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	// A second save creates a new version and moves CURRENT.
	m.Attrs = map[string]string{"rev": "2"}
	require.NoError(t, s.Save(ctx, m))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.ID)
	assert.Equal(t, "2", got.Attrs["rev"])

	names, err := blobs.List(ctx, "data/run1/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"data/run1/CURRENT",
		"data/run1/MANIFEST-000001.json",
		"data/run1/MANIFEST-000002.json",
	}, names)
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore(), "", nil)

	m := testManifest()
	m.Files = nil
	require.ErrorIs(t, s.Save(context.Background(), m), ErrInvalidManifest)
	assert.Equal(t, uint64(0), m.ID)
	assert.Equal(t, "CURRENT", s.Path(CurrentFileName))
}

func TestStore_SaveFailedPutKeepsID(t *testing.T) {
	ctx := context.Background()

	for _, target := range []string{ManifestFileName + "-", CurrentFileName} {
		t.Run(target, func(t *testing.T) {
			blobs := blobstore.NewFaultyStore(blobstore.NewMemoryStore())
			s := NewStore(blobs, "ds", nil)

			m := testManifest()
			require.NoError(t, s.Save(ctx, m))
			require.Equal(t, uint64(1), m.ID)

			blobs.AddRule(target, blobstore.Fault{FailOnPut: true, FailAfterBytes: -1})
			require.Error(t, s.Save(ctx, m))
			assert.Equal(t, uint64(1), m.ID)
			assert.Equal(t, 1, blobs.Injected())

			blobs.ClearRules()
			require.NoError(t, s.Save(ctx, m))
			assert.Equal(t, uint64(2), m.ID)

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(2), got.ID)
		})
	}
}
