package items

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDocuments(t *testing.T) {
	data := []byte("a: 1\n---\nb: 2\n---   \n\n---\nc: 3\n")

	docs := SplitDocuments(data)
	require.Len(t, docs, 3)
	assert.Contains(t, string(docs[0]), "a: 1")
	assert.Contains(t, string(docs[2]), "c: 3")
}

func TestSplitDocuments_Empty(t *testing.T) {
	assert.Empty(t, SplitDocuments([]byte("\n---\n  \n")))
}

func TestParse_MultiDocument(t *testing.T) {
	got, err := Parse("in.yaml", []byte("name: a\n---\n[1, 2, 3]\n---\nplain string\n"))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, map[string]any{"name": "a"}, got[0].Value)
	assert.Equal(t, []any{1, 2, 3}, got[1].Value)
	assert.Equal(t, "plain string", got[2].Value)
	assert.Equal(t, "in.yaml#2", got[2].ID())
}

func TestParse_JSON(t *testing.T) {
	got, err := Parse("in.json", []byte(`{"id": 7, "tags": ["x"]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"id": 7, "tags": []any{"x"}}, got[0].Value)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("bad.yaml", []byte("a: [1, 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing bad.yaml document 0")
}

func TestLoad_FilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte("1\n---\n2\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("3\n"), 0o600))

	got, err := Load(nil, a, b)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, a, got[0].Source)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, b, got[2].Source)
	assert.Equal(t, 3, got[2].Value)
}

func TestLoad_Stdin(t *testing.T) {
	got, err := Load(strings.NewReader("x: y\n"), "-")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "-", got[0].Source)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestExpand_DirectoriesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cache"), 0o755))

	for _, name := range []string{"b.yaml", "a.json", "notes.txt", ".hidden.yaml", "sub/c.yml", ".cache/d.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x: 1"), 0o644))
	}

	single := filepath.Join(t.TempDir(), "single.txt")
	require.NoError(t, os.WriteFile(single, []byte("x: 1"), 0o644))

	got, err := Expand(single, dir, "-")
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yml"),
		"-",
	}, got)
}

func TestExpand_MissingPath(t *testing.T) {
	_, err := Expand(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "reading")
}
