package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "scratch"), logger.New("error"))
}

func TestAcquireAllocatesUniqueDirs(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Acquire(context.Background())
	require.NoError(t, err)
	b, err := m.Acquire(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.Dir(), b.Dir())

	for _, ws := range []*Workspace{a, b} {
		info, err := os.Stat(ws.Dir())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWriteInputStagesFixedName(t *testing.T) {
	m := newTestManager(t)

	ws, err := m.Acquire(context.Background())
	require.NoError(t, err)
	defer m.Release(ws)

	require.NoError(t, m.WriteInput(context.Background(), ws, []byte("OggS payload")))

	body, err := os.ReadFile(ws.InputPath())
	require.NoError(t, err)
	assert.Equal(t, []byte("OggS payload"), body)
}

func TestReadOutputMissingFile(t *testing.T) {
	m := newTestManager(t)

	ws, err := m.Acquire(context.Background())
	require.NoError(t, err)
	defer m.Release(ws)

	_, err = m.ReadOutput(context.Background(), ws)
	assert.ErrorIs(t, err, entity.ErrOutputNotFound)
}

func TestReleaseRemovesEverythingAndIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	ws, err := m.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(context.Background(), ws, []byte("payload")))

	m.Release(ws)

	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))

	m.Release(ws)
	m.Release(nil)
}
