package ziparc

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"time"
)

// ResultFS exposes a fully extracted result set as a read-only filesystem.
//
// Entries are addressed by their archive names, which must satisfy
// fs.ValidPath to be reachable. Failed entries serve their raw bytes.
type ResultFS struct {
	files map[string]Content
}

// Interface compliance.
var (
	_ fs.FS         = (*ResultFS)(nil)
	_ fs.ReadFileFS = (*ResultFS)(nil)
)

// NewResultFS wraps extraction results in a filesystem view.
func NewResultFS(results []Extracted) *ResultFS {
	files := make(map[string]Content, len(results))
	for _, r := range results {
		files[r.Name] = r.Content
	}
	return &ResultFS{files: files}
}

// Open implements fs.FS.
func (rfs *ResultFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	content, ok := rfs.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	data := content.Bytes()
	return &resultFile{
		reader: bytes.NewReader(data),
		info:   resultInfo{name: path.Base(name), size: int64(len(data))},
	}, nil
}

// ReadFile implements fs.ReadFileFS.
func (rfs *ResultFS) ReadFile(name string) ([]byte, error) {
	f, err := rfs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type resultFile struct {
	reader *bytes.Reader
	info   resultInfo
}

func (f *resultFile) Read(p []byte) (int, error) { return f.reader.Read(p) }

func (f *resultFile) ReadAt(p []byte, off int64) (int, error) { return f.reader.ReadAt(p, off) }

func (f *resultFile) Stat() (fs.FileInfo, error) { return f.info, nil }

func (f *resultFile) Close() error { return nil }

type resultInfo struct {
	name string
	size int64
}

func (i resultInfo) Name() string       { return i.name }
func (i resultInfo) Size() int64        { return i.size }
func (i resultInfo) Mode() fs.FileMode  { return 0o444 }
func (i resultInfo) ModTime() time.Time { return time.Time{} }
func (i resultInfo) IsDir() bool        { return false }
func (i resultInfo) Sys() any           { return nil }
