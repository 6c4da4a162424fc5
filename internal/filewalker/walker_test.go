package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestRenamer(t *testing.T) {
	r := Renamer{From: "english", To: "spanish"}
	assert.Equal(t, "events_l_spanish.yml", r.File("events_l_english.yml"))
	assert.Equal(t, "names_l_spanish.yml", r.File("names_l_english.txt"))
	assert.Equal(t, "README.yml", r.File("README"))
	assert.Equal(t, "replace_spanish", r.Dir("replace_english"))
	assert.Equal(t, "common", r.Dir("common"))
}

func TestLayout(t *testing.T) {
	mod := t.TempDir()
	_, _, err := Layout(mod, "localization", "english", "spanish")
	assert.ErrorIs(t, err, ErrSourceMissing)

	require.NoError(t, os.MkdirAll(filepath.Join(mod, "localization"), 0755))
	_, _, err = Layout(mod, "localization", "english", "spanish")
	assert.ErrorIs(t, err, ErrSourceMissing)

	require.NoError(t, os.MkdirAll(filepath.Join(mod, "localization", "english"), 0755))
	src, dst, err := Layout(mod, "localization", "english", "spanish")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mod, "localization", "english"), src)
	assert.Equal(t, filepath.Join(mod, "localization", "spanish"), dst)

	_, _, err = Layout(filepath.Join(mod, "missing"), "localization", "english", "spanish")
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestPrepareTarget(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "spanish")
	require.NoError(t, PrepareTarget(dst, false))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "old.yml"), []byte("x"), 0644))

	assert.ErrorIs(t, PrepareTarget(dst, false), ErrTargetExists)

	require.NoError(t, PrepareTarget(dst, true))
	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWalkMirrorsTree(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "english")
	dst := filepath.Join(base, "spanish")
	writeTree(t, src, map[string]string{
		"b_l_english.yml":                 "l_english:\n",
		"a_l_english.yml":                 "l_english:\n",
		"replace_english/x_l_english.yml": "l_english:\n",
		"nested/deep/y_l_english.txt":     "l_english:\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty_english"), 0755))

	tree, err := NewWalker("english", "spanish").Walk(src, dst)
	require.NoError(t, err)

	var rels, targets []string
	for _, f := range tree.Files {
		rels = append(rels, filepath.ToSlash(f.Rel))
		r, err := filepath.Rel(dst, f.Target)
		require.NoError(t, err)
		targets = append(targets, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{
		"a_l_english.yml",
		"b_l_english.yml",
		"nested/deep/y_l_english.txt",
		"replace_english/x_l_english.yml",
	}, rels)
	assert.Equal(t, []string{
		"a_l_spanish.yml",
		"b_l_spanish.yml",
		"nested/deep/y_l_spanish.yml",
		"replace_spanish/x_l_spanish.yml",
	}, targets)

	require.NoError(t, tree.Mirror())
	for _, d := range []string{"empty_spanish", "nested/deep", "replace_spanish"} {
		info, err := os.Stat(filepath.Join(dst, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWalkRejectsCollidingTargets(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "english")
	writeTree(t, src, map[string]string{
		"a.txt": "x",
		"a.yml": "y",
	})
	_, err := NewWalker("english", "spanish").Walk(src, filepath.Join(base, "spanish"))
	assert.Error(t, err)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := NewWalker("english", "spanish").Walk(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b.yml")
	require.NoError(t, WriteFile(p, []byte("data")))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}
