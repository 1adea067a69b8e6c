// Package mapfs presents an explicit list of files, keyed by base name, as
// an fs.FS. The CLI uses it to hand loose file arguments to APIs that walk
// filesystems.
package mapfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type MapFS map[string]string

var _ fs.FS = (MapFS)(nil)

// New builds a MapFS from the given paths.
func New(paths ...string) MapFS {
	m := make(MapFS, len(paths))
	for _, p := range paths {
		m.Add(p)
	}
	return m
}

// Add registers a file under its base name.
func (m MapFS) Add(path string) {
	m[filepath.Base(path)] = path
}

func (m MapFS) Open(name string) (fs.File, error) {
	if name == "." {
		return m.openRoot()
	}
	path, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return os.Open(path)
}

func (m MapFS) openRoot() (fs.File, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []fs.DirEntry
	for _, name := range names {
		info, err := os.Stat(m[name])
		if err != nil {
			return nil, fmt.Errorf("mapfs: %s: %w", name, err)
		}
		entries = append(entries, renamedEntry{name: name, info: info})
	}
	return &rootDir{entries: entries}, nil
}

// renamedEntry is a DirEntry reporting the registered name instead of the
// underlying file's.
type renamedEntry struct {
	name string
	info fs.FileInfo
}

func (e renamedEntry) Name() string               { return e.name }
func (e renamedEntry) IsDir() bool                { return e.info.IsDir() }
func (e renamedEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e renamedEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// rootDir implements fs.ReadDirFile for the synthetic root directory.
type rootDir struct {
	entries []fs.DirEntry
	pos     int
}

func (d *rootDir) Stat() (fs.FileInfo, error) { return rootInfo{}, nil }
func (d *rootDir) Read([]byte) (int, error)   { return 0, io.EOF }
func (d *rootDir) Close() error               { return nil }

func (d *rootDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.pos >= len(d.entries) {
		if n <= 0 {
			return nil, nil
		}
		return nil, io.EOF
	}
	if n <= 0 || d.pos+n > len(d.entries) {
		n = len(d.entries) - d.pos
	}
	entries := d.entries[d.pos : d.pos+n]
	d.pos += n
	return entries, nil
}

type rootInfo struct{}

func (rootInfo) Name() string       { return "." }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() interface{}   { return nil }
