package logfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_ReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.log")
	require.NoError(t, os.WriteFile(path, []byte("E{}\n"), 0o644))

	src := NewFileSource(path)
	data, err := src.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "E{}\n", string(data))
	assert.Equal(t, path, src.Name())
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.log"))

	_, err := src.ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFileSource_RereadsEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.log")
	require.NoError(t, os.WriteFile(path, []byte("E1\n"), 0o644))
	src := NewFileSource(path)

	first, err := src.ReadAll(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("E1\nE2\n"), 0o644))
	second, err := src.ReadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "E1\n", string(first))
	assert.Equal(t, "E1\nE2\n", string(second))
}

func TestSources_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := []Source{
		NewFileSource("unused"),
		BytesSource{Data: []byte("E{}")},
	}
	for _, src := range sources {
		_, err := src.ReadAll(ctx)
		assert.ErrorIs(t, err, context.Canceled, "source %T", src)
	}
}

func TestBytesSource_ReturnsCopy(t *testing.T) {
	src := BytesSource{Data: []byte("E{}")}

	data, err := src.ReadAll(context.Background())
	require.NoError(t, err)
	data[0] = 'X'

	assert.Equal(t, "E{}", string(src.Data))
	assert.Equal(t, "memory", src.Name())
	assert.Equal(t, "fixture", BytesSource{Label: "fixture"}.Name())
}
