package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column/internal/domain"
	"column/internal/storage"
)

// writeConfig points a config at a file store in a temp dir and optionally
// saves payload under the default key.
func writeConfig(t *testing.T, payload string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "column.yaml")
	cfg := fmt.Sprintf("dataDir: %s\nautosave: \"\"\nlogLevel: error\nstore:\n  driver: file\n", dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	if payload != "" {
		files, err := storage.NewFileStore(filepath.Join(dir, "documents"))
		require.NoError(t, err)
		require.NoError(t, files.Save(context.Background(), domain.DefaultStorageKey, payload))
	}
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	t.Cleanup(func() {
		root.SetArgs(nil)
		catFlags.Raw = false
		exportFlags.Output, exportFlags.Page = "", false
	})
	_, err := root.ExecuteC()
	return out.String(), err
}

const saved = `[
	{"id":"1","type":"text","content":"Title","style":{"format":"heading1"}},
	{"id":"2","type":"text","content":"one","style":{"format":"list-item"}},
	{"id":"3","type":"divider","content":""},
	{"id":"4","type":"link","content":"Go","url":"go.dev"}
]`

func TestCat_Raw(t *testing.T) {
	out, err := run(t, "cat", "--raw", "-c", writeConfig(t, saved))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\n- one\n\n---\n\n[Go](https://go.dev)\n", out)
}

func TestCat_Styled(t *testing.T) {
	out, err := run(t, "cat", "--style", "notty", "-c", writeConfig(t, saved))
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "one")
}

func TestCat_Empty(t *testing.T) {
	out, err := run(t, "cat", "-c", writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, noContent+"\n", out)

	// unreadable payloads read as empty
	out, err = run(t, "cat", "-c", writeConfig(t, "{broken"))
	require.NoError(t, err)
	assert.Equal(t, noContent+"\n", out)
}

func TestExport(t *testing.T) {
	cfg := writeConfig(t, saved)
	out, err := run(t, "export", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, `<ul class="column-list">`)
	assert.Contains(t, out, `href="https://go.dev"`)
	assert.NotContains(t, out, "<html>")

	file := filepath.Join(t.TempDir(), "column.html")
	_, err = run(t, "export", "--page", "-o", file, "-c", cfg)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
	assert.Contains(t, string(data), "<hr/>")
}

func TestExport_NothingSaved(t *testing.T) {
	_, err := run(t, "export", "-c", writeConfig(t, ""))
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: nowhere\n"), 0o644))
	_, err := run(t, "cat", "-c", path)
	assert.Error(t, err)
}
