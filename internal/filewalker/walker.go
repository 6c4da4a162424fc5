// Package filewalker mirrors a source-language localization tree into the
// target language, renaming directories and files on the way.
package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// OutputExt is the extension every written localization file gets.
const OutputExt = ".yml"

var (
	// ErrSourceMissing is returned when the mod or its source-language
	// localization folder does not exist.
	ErrSourceMissing = errors.New("source localization folder not found")
	// ErrTargetExists is returned when the target folder exists and may not
	// be overwritten.
	ErrTargetExists = errors.New("target localization folder already exists")
)

// Renamer substitutes the source language name with the target one.
type Renamer struct {
	From string
	To   string
}

// Dir renames one directory name.
func (r Renamer) Dir(name string) string {
	return strings.ReplaceAll(name, r.From, r.To)
}

// File renames one file name and normalizes its extension.
func (r Renamer) File(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(base, r.From, r.To) + OutputExt
}

// FileEntry is a discovered source file and where its translation goes.
type FileEntry struct {
	Path   string
	Rel    string
	Target string
}

// Tree is the result of walking a source folder.
type Tree struct {
	Root   string
	Target string
	// Dirs are the target directories to create, parents first.
	Dirs  []string
	Files []FileEntry
}

// Walker traverses a source tree and computes the mirrored target paths.
type Walker struct {
	renamer Renamer
}

// NewWalker creates a Walker renaming from → to in every path segment.
func NewWalker(from, to string) *Walker {
	return &Walker{renamer: Renamer{From: from, To: to}}
}

// Layout resolves the source and target folders of a mod:
// <mod>/<locDir>/<from> and <mod>/<locDir>/<to>.
func Layout(modDir, locDir, from, to string) (src, dst string, err error) {
	info, err := os.Stat(modDir)
	if err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: mod folder %s", ErrSourceMissing, modDir)
	}

	base := filepath.Join(modDir, locDir)
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrSourceMissing, base)
	}

	src = filepath.Join(base, from)
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	return src, filepath.Join(base, to), nil
}

// PrepareTarget makes sure dst can be written. An existing dst is removed
// when overwrite is set and rejected otherwise.
func PrepareTarget(dst string, overwrite bool) error {
	_, err := os.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("stat target: %w", err)
	case !overwrite:
		return fmt.Errorf("%w: %s", ErrTargetExists, dst)
	default:
		log.Warn().Str("path", dst).Msg("Removing existing target folder")
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("remove target: %w", err)
		}
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	return nil
}

// Walk discovers every regular file under root in lexical order and maps
// it into target.
func (w *Walker) Walk(root, target string) (*Tree, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	tree := &Tree{Root: root, Target: target}
	seen := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if rel != "." {
				tree.Dirs = append(tree.Dirs, w.targetPath(target, rel, true))
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		out := w.targetPath(target, rel, false)
		if prev, dup := seen[out]; dup {
			return fmt.Errorf("%s and %s both map to %s", prev, rel, out)
		}
		seen[out] = rel

		tree.Files = append(tree.Files, FileEntry{Path: path, Rel: rel, Target: out})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("files", len(tree.Files)).Int("dirs", len(tree.Dirs)).Str("root", root).Msg("Discovered files")
	return tree, nil
}

func (w *Walker) targetPath(target, rel string, isDir bool) string {
	parts := strings.Split(rel, string(filepath.Separator))
	last := len(parts) - 1
	for i, p := range parts {
		if i == last && !isDir {
			parts[i] = w.renamer.File(p)
			continue
		}
		parts[i] = w.renamer.Dir(p)
	}
	return filepath.Join(append([]string{target}, parts...)...)
}

// Mirror creates the target root and every mirrored directory.
func (t *Tree) Mirror() error {
	if err := os.MkdirAll(t.Target, 0755); err != nil {
		return fmt.Errorf("create target root: %w", err)
	}
	for _, d := range t.Dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return nil
}

// WriteFile writes one output file, creating its parent if needed.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
