// Package archive locates music tracks inside an unpacked game archive.
//
// Tracks are stored one per file and addressed by a numeric id. The file name
// for an id is produced from a printf-style pattern such as "track%02d.xmi".
// Lookups ignore case because archives copied from DOS media use upper-case
// names.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zurustar/musicdec/pkg/fileutil"
)

// ErrTrackNotFound is returned when no file exists for a track id.
var ErrTrackNotFound = errors.New("track not found")

// TrackSource yields the raw bytes of a track.
type TrackSource interface {
	Track(id int) ([]byte, error)
}

// Directory is a TrackSource over one directory of a FileSystem.
type Directory struct {
	fsys    fileutil.FileSystem
	pattern string
}

// NewDirectory returns a Directory reading files named by pattern. A pattern
// without a formatting verb names a single file returned for every id.
func NewDirectory(fsys fileutil.FileSystem, pattern string) *Directory {
	return &Directory{fsys: fsys, pattern: pattern}
}

// Open returns a TrackSource for path. A directory is searched with pattern;
// a regular file is served as the only track.
func Open(path, pattern string) (*Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if info.IsDir() {
		return NewDirectory(fileutil.NewRealFS(path), pattern), nil
	}
	// Escape '%' so the file name is used verbatim.
	name := strings.ReplaceAll(filepath.Base(path), "%", "%%")
	return NewDirectory(fileutil.NewRealFS(filepath.Dir(path)), name), nil
}

// Name returns the file name for a track id.
func (d *Directory) Name(id int) string {
	if !hasVerb(d.pattern) {
		return strings.ReplaceAll(d.pattern, "%%", "%")
	}
	return fmt.Sprintf(d.pattern, id)
}

// Track reads the file for id.
func (d *Directory) Track(id int) ([]byte, error) {
	name := d.Name(id)
	data, err := d.fsys.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %d (%s)", ErrTrackNotFound, id, name)
		}
		return nil, fmt.Errorf("failed to read track %d: %w", id, err)
	}
	return data, nil
}

// List returns the ids of all tracks present, in ascending order. A pattern
// without a verb lists id 0 when its file exists.
func (d *Directory) List() ([]int, error) {
	entries, err := d.fsys.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !hasVerb(d.pattern) {
			if strings.EqualFold(entry.Name(), d.Name(0)) {
				ids = append(ids, 0)
			}
			continue
		}
		var id int
		if _, err := fmt.Sscanf(strings.ToLower(entry.Name()), strings.ToLower(d.pattern), &id); err != nil {
			continue
		}
		// Sscanf accepts prefixes and loose widths; keep exact matches only.
		if strings.EqualFold(d.Name(id), entry.Name()) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// hasVerb reports whether pattern contains a formatting verb other than "%%".
func hasVerb(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		if i+1 < len(pattern) && pattern[i+1] == '%' {
			i++
			continue
		}
		return true
	}
	return false
}
