package appdir

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	appDirCache = ""
	t.Cleanup(func() { appDirCache = "" })

	assert.Equal(t, filepath.Join(home, dirName), AppDir())
	assert.Equal(t, filepath.Join(home, dirName, "journal.db"), Resolve("journal.db"))
	assert.Equal(t, "/var/tmp/j.db", Resolve("/var/tmp/j.db"))

	require.NoError(t, Ensure())
	assert.DirExists(t, AppDir())
	require.NoError(t, Ensure())
}
