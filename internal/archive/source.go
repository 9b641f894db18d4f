package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// manifestName is written by the zip exporter and never holds messages.
const manifestName = "chatview-manifest.json"

// readCloser pairs an entry reader with the zip file it came from.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns a reader for the archive JSON at p. A .zip file is searched
// for its first .json entry by name.
func Open(p string) (io.ReadCloser, error) {
	if !strings.EqualFold(filepath.Ext(p), ".zip") {
		return os.Open(p)
	}
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	f := jsonEntry(zr.File)
	if f == nil {
		zr.Close()
		return nil, &FormatError{Msg: fmt.Sprintf("no JSON archive in %s", p)}
	}
	rc, err := f.Open()
	if err != nil {
		zr.Close()
		return nil, err
	}
	return readCloser{Reader: rc, closers: []io.Closer{rc, zr}}, nil
}

func jsonEntry(files []*zip.File) *zip.File {
	var cands []*zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		if strings.EqualFold(base, manifestName) || strings.HasPrefix(base, ".") {
			continue
		}
		if strings.EqualFold(path.Ext(base), ".json") {
			cands = append(cands, f)
		}
	}
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].Name < cands[j].Name })
	return cands[0]
}
