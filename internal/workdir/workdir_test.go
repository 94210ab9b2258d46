package workdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ExplicitBase(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	d, err := New(base)
	require.NoError(t, err)

	require.Equal(t, base, filepath.Dir(d.Path()))

	info, err := os.Stat(d.Path())
	require.NoError(t, err)
	require.True(t, info.IsDir())

	require.NoError(t, d.Close())
	_, err = os.Stat(d.Path())
	require.True(t, os.IsNotExist(err))
}

func TestClose_RemovesContents(t *testing.T) {
	t.Parallel()

	d, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(d.Path(), "files.img.in"), []byte("x"), 0o600))
	require.NoError(t, d.Close())

	_, err = os.Stat(d.Path())
	require.True(t, os.IsNotExist(err))
}

func TestNew_DefaultBase(t *testing.T) {
	t.Parallel()

	d, err := New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	info, err := os.Stat(d.Path())
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
