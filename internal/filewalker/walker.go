package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Walker discovers header files and decides where their conversions go.
type Walker struct {
	ext        string
	outDirName string
	recursive  bool
}

// NewWalker creates a Walker for files with the given extension. Converted
// files are written to a directory named outDirName beside each input.
func NewWalker(ext, outDirName string, recursive bool) *Walker {
	return &Walker{
		ext:        strings.ToLower(ext),
		outDirName: outDirName,
		recursive:  recursive,
	}
}

// FileEntry represents a discovered header ready for conversion.
type FileEntry struct {
	Path    string
	OutPath string
}

// Matches reports whether path names a header file outside an output directory.
func (w *Walker) Matches(path string) bool {
	if strings.ToLower(filepath.Ext(path)) != w.ext {
		return false
	}
	return filepath.Base(filepath.Dir(path)) != w.outDirName
}

// Recursive reports whether subdirectories are searched.
func (w *Walker) Recursive() bool {
	return w.recursive
}

// IsOutputDir reports whether dir is a conversion output directory.
func (w *Walker) IsOutputDir(dir string) bool {
	return filepath.Base(dir) == w.outDirName
}

// Entry resolves a single file into a FileEntry.
func (w *Walker) Entry(path string) (FileEntry, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return FileEntry{}, fmt.Errorf("resolve file path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return FileEntry{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return FileEntry{}, fmt.Errorf("path is a directory: %s", path)
	}

	return FileEntry{
		Path:    path,
		OutPath: filepath.Join(filepath.Dir(path), w.outDirName, filepath.Base(path)),
	}, nil
}

// Walk discovers all header files under the given root directory.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !w.recursive || w.IsOutputDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.Matches(path) {
			return nil
		}

		entry, err := w.Entry(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping header")
			return nil
		}
		entries = append(entries, entry)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered headers")
	return entries, nil
}
