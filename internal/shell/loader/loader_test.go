package loader

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/stacker/internal/core/resolve"
	"github.com/artpar/stacker/internal/core/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testLoader() *Loader {
	return New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

// =============================================================================
// ReadValuesFile Tests
// =============================================================================

func TestReadValuesFile_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "values.yaml", "name: web\nreplicas: 3\n")

	tree, err := ReadValuesFile(path)
	require.NoError(t, err)
	assert.Equal(t, "web", tree["name"])
	assert.Equal(t, 3, tree["replicas"])
}

func TestReadValuesFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := ReadValuesFile(path)
	require.Error(t, err)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, path, srcErr.Source)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadValuesFile_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "key: [unclosed\n")

	_, err := ReadValuesFile(path)
	require.Error(t, err)

	var srcErr *SourceError
	assert.ErrorAs(t, err, &srcErr)
}

func TestReadValuesFile_NonMappingRoot(t *testing.T) {
	path := writeFile(t, t.TempDir(), "seq.yaml", "- one\n- two\n")

	_, err := ReadValuesFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, values.ErrInvalidRootShape)
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "values.yaml", "app:\n  name: web\n")

	tree, err := testLoader().Load([]string{path})
	require.NoError(t, err)

	val, ok := values.Get(tree, "app.name")
	require.True(t, ok)
	assert.Equal(t, "web", val)
}

func TestLoad_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "name: base\nport: 8080\n")
	prod := writeFile(t, dir, "prod.yaml", "name: prod\n")

	tree, err := testLoader().Load([]string{base, prod})
	require.NoError(t, err)
	assert.Equal(t, "prod", tree["name"])
	assert.Equal(t, 8080, tree["port"])
}

func TestLoad_InlineOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "values.yaml", "app:\n  name: web\n")

	tree, err := testLoader().Load([]string{path, "app.name=cli-override"})
	require.NoError(t, err)

	val, _ := values.Get(tree, "app.name")
	assert.Equal(t, "cli-override", val)
}

func TestLoad_CrossFileReference(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "world: earth\n")
	derived := writeFile(t, dir, "derived.yaml", "greeting: 'hello {{ world }}'\n")

	tree, err := testLoader().Load([]string{base, derived})
	require.NoError(t, err)
	assert.Equal(t, "hello earth", tree["greeting"])
}

func TestLoad_OverrideFeedsReference(t *testing.T) {
	path := writeFile(t, t.TempDir(), "values.yaml", "url: 'https://{{ host }}'\n")

	tree, err := testLoader().Load([]string{path, "host=example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", tree["url"])
}

func TestLoad_CircularReferenceFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "values.yaml", "a: '{{ b }}'\nb: '{{ a }}'\n")

	_, err := testLoader().Load([]string{path})
	require.Error(t, err)
	assert.ErrorIs(t, err, resolve.ErrCircularDependency)
}

func TestLoad_MissingFileAborts(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "ok: yes\n")
	missing := filepath.Join(dir, "missing.yaml")

	_, err := testLoader().Load([]string{good, missing})
	require.Error(t, err)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, missing, srcErr.Source)
}

func TestLoad_BadOverrideAborts(t *testing.T) {
	_, err := testLoader().Load([]string{"=value"})
	require.Error(t, err)
	assert.ErrorIs(t, err, values.ErrInvalidOverride)
}

func TestLoad_NoSources(t *testing.T) {
	tree, err := testLoader().Load(nil)
	require.NoError(t, err)
	assert.Empty(t, tree)
}
