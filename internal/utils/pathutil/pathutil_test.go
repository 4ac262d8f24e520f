package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/.greenlens")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".greenlens"), got)

	got, err = ExpandPath("/srv/greenlens")
	require.NoError(t, err)
	assert.Equal(t, "/srv/greenlens", got)
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	calls := 0
	create := func(p string) error {
		calls++
		return os.WriteFile(p, []byte("port: 8881\n"), 0o644)
	}

	require.NoError(t, EnsureFile(path, create))
	require.NoError(t, EnsureFile(path, create))
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	err := EnsureFile(filepath.Join(t.TempDir(), ".env"), func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
}
