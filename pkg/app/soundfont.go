package app

import (
	"os"
	"path/filepath"

	"github.com/zurustar/musicdec/pkg/fileutil"
)

// SoundFontLocation represents the location of a SoundFont file.
type SoundFontLocation struct {
	// Path is the path to the SoundFont file, relative to FileSystem when set
	Path string
	// FileSystem is the FileSystem to use for loading (nil for a plain path)
	FileSystem fileutil.FileSystem
}

// DefaultSoundFontName is the default SoundFont filename to search for.
const DefaultSoundFontName = "GeneralUser-GS.sf2"

// findSoundFont searches for a SoundFont file in the following order:
// 1. The explicitly configured path
// 2. The archive directory (case-insensitive)
// 3. The current directory
//
// Returns nil when no SoundFont is found.
func findSoundFont(explicit, archivePath string) *SoundFontLocation {
	// 1. 明示的に指定されたパス（存在しなくても返し、読み込み時にエラーにする）
	if explicit != "" {
		return &SoundFontLocation{Path: explicit}
	}

	// 2. アーカイブのディレクトリ
	if archivePath != "" {
		dir := archivePath
		if info, err := os.Stat(archivePath); err == nil && !info.IsDir() {
			dir = filepath.Dir(archivePath)
		}
		if _, err := fileutil.FindFileCaseInsensitive(dir, DefaultSoundFontName); err == nil {
			return &SoundFontLocation{
				Path:       DefaultSoundFontName,
				FileSystem: fileutil.NewRealFS(dir),
			}
		}
	}

	// 3. カレントディレクトリ
	if _, err := os.Stat(DefaultSoundFontName); err == nil {
		return &SoundFontLocation{Path: DefaultSoundFontName}
	}

	return nil
}
