package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferSinkKeepsArtifact(t *testing.T) {
	sink := &BufferSink{}
	err := sink.Deliver(context.Background(), []byte("a,b\n1,2"), "out.csv")
	require.NoError(t, err)
	assert.Equal(t, "out.csv", sink.Filename)
	assert.Equal(t, []byte("a,b\n1,2"), sink.Data)
}

func TestFileSinkWritesIntoDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := NewFileSink(dir)

	err := sink.Deliver(context.Background(), []byte("content"), "trips.csv")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "trips.csv"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestFileSinkReportsStorageUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The directory path collides with a regular file, so MkdirAll fails.
	sink := NewFileSink(filepath.Join(blocker, "exports"))
	err := sink.Deliver(context.Background(), []byte("content"), "trips.csv")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFileSinkStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	err := sink.Deliver(context.Background(), []byte("x"), "../escape.csv")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "escape.csv"))
	assert.NoError(t, err)
}
