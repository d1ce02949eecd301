// Package fileutil provides unified, case-insensitive access to the real file
// system and to any fs.FS.
package fileutil

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem は実ファイルシステムと fs.FS を統一的に扱うインターフェース
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// ReadDir はディレクトリの内容を読み込む
	ReadDir(name string) ([]fs.DirEntry, error)
	// BasePath はベースパスを返す
	BasePath() string
}

// RealFS reads from a directory on disk.
type RealFS struct {
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	p := r.resolvePath(name)
	// まず直接アクセスを試みる
	if data, err := os.ReadFile(p); err == nil {
		return data, nil
	}
	actual, err := FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(actual)
}

func (r *RealFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(r.resolvePath(name))
}

func (r *RealFS) BasePath() string {
	return r.basePath
}

func (r *RealFS) resolvePath(name string) string {
	// 先頭の "/" や "\" を除去
	clean := strings.TrimLeft(name, `/\`)
	if r.basePath != "" {
		return filepath.Join(r.basePath, clean)
	}
	return clean
}

// IOFS adapts an fs.FS, such as embed.FS or fstest.MapFS.
type IOFS struct {
	fsys     fs.FS
	basePath string
}

// NewIOFS returns a FileSystem rooted at basePath inside fsys.
func NewIOFS(fsys fs.FS, basePath string) *IOFS {
	return &IOFS{fsys: fsys, basePath: basePath}
}

func (e *IOFS) ReadFile(name string) ([]byte, error) {
	p := e.resolvePath(name)
	if data, err := fs.ReadFile(e.fsys, p); err == nil {
		return data, nil
	}
	actual, err := FindFileCaseInsensitiveFS(e.fsys, path.Dir(p), path.Base(p))
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(e.fsys, actual)
}

func (e *IOFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(e.fsys, e.resolvePath(name))
}

func (e *IOFS) BasePath() string {
	return e.basePath
}

func (e *IOFS) resolvePath(name string) string {
	// fs.FS では "/" を使用
	clean := strings.TrimLeft(strings.ReplaceAll(name, `\`, "/"), "/")
	if clean == "" {
		clean = "."
	}
	if e.basePath != "" {
		return path.Join(e.basePath, clean)
	}
	return path.Clean(clean)
}
