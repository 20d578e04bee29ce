package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrPathEncoding marks a file name that is not valid UTF-8 text.
var ErrPathEncoding = errors.New("file name is not valid UTF-8")

// Entry is a level file selected for conversion.
type Entry struct {
	Path string // full path
	Name string // base name
	Stem string // base name without extension
	Ext  string // lower-cased extension with leading dot
}

// OutputName returns the output file name for the entry.
func (e Entry) OutputName(suffix string) string {
	return e.Stem + suffix
}

// Skipped is a directory entry rejected during discovery.
type Skipped struct {
	Name   string
	Reason error
}

// Discover lists the files in dir whose extension matches one of exts,
// compared case-insensitively. Subdirectories are not descended into.
//
// Failing to read dir is returned as an error. Matching file names that are
// not valid UTF-8 are returned in skipped with ErrPathEncoding; everything
// that does not match is ignored. Entries come back sorted by name.
func Discover(dir string, exts []string) (entries []Entry, skipped []Skipped, err error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("source: reading directory %s: %w", dir, err)
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted[NormalizeExt(ext)] = true
	}

	for _, d := range dirEntries {
		name := d.Name()
		if d.IsDir() {
			continue
		}

		ext := extOf(name)
		if !wanted[ext] {
			continue
		}
		if !utf8.ValidString(name) {
			skipped = append(skipped, Skipped{Name: name, Reason: ErrPathEncoding})
			continue
		}

		entries = append(entries, Entry{
			Path: filepath.Join(dir, name),
			Name: name,
			Stem: strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:  ext,
		})
	}

	return entries, skipped, nil
}

// EntryFor builds an Entry for a single file path.
func EntryFor(path string) Entry {
	name := filepath.Base(path)
	return Entry{
		Path: path,
		Name: name,
		Stem: strings.TrimSuffix(name, filepath.Ext(name)),
		Ext:  extOf(name),
	}
}

func extOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
