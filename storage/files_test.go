package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scriptgen-ra/scriptgen/common/config"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	store, err := New(&config.Config{
		UploadsDir: filepath.Join(base, "uploads"),
		OutputDir:  filepath.Join(base, "output"),
	})
	require.NoError(t, err)
	return store
}

func TestNewCreatesDirectories(t *testing.T) {
	store := testStore(t)
	for _, dir := range []string{store.UploadsDir, store.OutputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestTimestampedName(t *testing.T) {
	name := TimestampedName("AWS3.java")
	require.True(t, strings.HasSuffix(name, "-AWS3.java"))
	require.NotContains(t, name, ":")

	// path components of the original name are stripped
	require.Equal(t, filepath.Base(TimestampedName("../../etc/passwd")), TimestampedName("../../etc/passwd"))
}

func TestPathTraversalRejected(t *testing.T) {
	store := testStore(t)
	for _, name := range []string{"", "../escape.java", "a/b.java", ".."} {
		_, err := store.UploadPath(name)
		require.Error(t, err, name)
		_, err = store.OutputPath(name)
		require.Error(t, err, name)
	}

	p, err := store.OutputPath("GeneratedMethods_x.java")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(store.OutputDir, "GeneratedMethods_x.java"), p)
}

func TestSaveArtifacts(t *testing.T) {
	store := testStore(t)
	saved, err := store.SaveArtifacts("2025-07-06T05-58-07-016Z-abc123", "METHOD", "TEST")
	require.NoError(t, err)

	require.Equal(t, "GeneratedMethods_2025-07-06T05-58-07-016Z-abc123.java", saved.MethodFilename)
	require.Equal(t, "GeneratedTests_2025-07-06T05-58-07-016Z-abc123.java", saved.TestFilename)
	require.Equal(t, "GeneratedCombined_2025-07-06T05-58-07-016Z-abc123.java", saved.CombinedFilename)

	method, err := os.ReadFile(saved.MethodPath)
	require.NoError(t, err)
	require.Equal(t, "METHOD", string(method))

	combined, err := os.ReadFile(saved.CombinedPath)
	require.NoError(t, err)
	require.Equal(t,
		"// ======= METHOD FILE =======\nMETHOD\n\n// ======= TEST FILE =======\nTEST",
		string(combined))
}

func TestListGenerated(t *testing.T) {
	store := testStore(t)

	_, err := store.SaveArtifacts("older", "m1", "t1")
	require.NoError(t, err)
	// make mtimes distinguishable
	older, _ := store.OutputPath("GeneratedCombined_older.java")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	_, err = store.SaveArtifacts("newer", "m2", "t2")
	require.NoError(t, err)

	// non-java files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(store.OutputDir, "notes.txt"), []byte("x"), 0o644))

	files, err := store.ListGenerated()
	require.NoError(t, err)
	require.Len(t, files, 6)
	for _, f := range files {
		require.True(t, strings.HasSuffix(f.Filename, ".java"))
		require.Contains(t, []string{"method", "test", "combined"}, f.Type)
	}

	latest, err := store.LatestCombined()
	require.NoError(t, err)
	require.Equal(t, "GeneratedCombined_newer.java", latest)
}

func TestLatestCombinedEmpty(t *testing.T) {
	store := testStore(t)
	_, err := store.LatestCombined()
	require.Error(t, err)
}
