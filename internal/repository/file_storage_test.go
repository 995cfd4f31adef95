package repository_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/shopcart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	_, err := repository.NewFile("", quietLogger())
	require.EqualError(t, err, "path is empty")
}

func TestFile_RoundTrip(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "nested", "cart.json")

	storage, err := repository.NewFile(path, quietLogger())
	require.NoError(t, err)

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())

	want := randomCart(4)
	require.NoError(t, storage.Save(ctx, want))

	loaded, err = storage.Load(ctx)
	require.NoError(t, err)
	assertCart(t, want, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFile_MalformedSlot(t *testing.T) {
	for _, tt := range malformedPayloads {
		t.Run(tt.name+": empty cart", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cart.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.payload), 0o600))

			log, hook := hookedLogger()
			storage, err := repository.NewFile(path, log)
			require.NoError(t, err)

			loaded, err := storage.Load(t.Context())
			require.NoError(t, err)
			assert.Zero(t, loaded.Len())
			assert.NotNil(t, hook.LastEntry())
		})
	}
}

func TestFile_UnreadableSlot(t *testing.T) {
	// a directory in place of the file is an I/O error, not a malformed cart
	path := t.TempDir()

	storage, err := repository.NewFile(path, quietLogger())
	require.NoError(t, err)

	_, err = storage.Load(t.Context())
	require.Error(t, err)
}
