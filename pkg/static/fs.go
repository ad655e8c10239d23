package static

import (
	"errors"
	"io"
	"io/fs"
)

// FSSource serves files from an fs.FS.
//
//	//go:embed www
//	var assets embed.FS
//
//	route := router.NewStaticRoute("/.*", "/www", static.NewFSSource(assets))
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source backed by fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Open implements router.ContentSource.
func (s *FSSource) Open(name string) (io.ReadCloser, string, bool) {
	f, err := s.open(cleanName(name))
	if err != nil {
		return nil, "", false
	}
	return f, MimeType(name), true
}

func (s *FSSource) open(name string) (fs.File, error) {
	if name == "" || !fs.ValidPath(name) {
		return nil, ErrNotFound
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}
