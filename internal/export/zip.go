package export

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatview/internal/rows"
)

const (
	ManifestName = "chatview-manifest.json"
	ViewName     = "view.md"
)

// Meta describes where an exported view came from.
type Meta struct {
	Source string
	Query  string
}

type Manifest struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Source    string    `json:"source,omitempty"`
	Query     string    `json:"query,omitempty"`
	Rows      int       `json:"rows"`
	Kept      int       `json:"kept"`
	Messages  int       `json:"messages"`
	Files     []string  `json:"attachments,omitempty"`
}

// Zip writes the kept rows as view.md together with a manifest into a new
// zip file at zipPath.
func Zip(zipPath string, rs []rows.Row, kept []int, meta Meta) (Manifest, error) {
	if kept == nil {
		kept = allIndices(len(rs))
	}
	man := Manifest{
		Version:   1,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    meta.Source,
		Query:     strings.TrimSpace(meta.Query),
		Rows:      len(rs),
		Kept:      len(kept),
	}
	for _, i := range kept {
		if i < 0 || i >= len(rs) {
			continue
		}
		if mr, ok := rs[i].(rows.MessageRow); ok {
			man.Messages++
			for _, a := range mr.Attachments {
				if a.URL != "" {
					man.Files = append(man.Files, a.URL)
				}
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return man, err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return man, err
	}
	defer f.Close()
	zw := zip.NewWriter(f)

	if err := writeJSON(zw, ManifestName, man); err != nil {
		zw.Close()
		return man, err
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: ViewName, Method: zip.Deflate, Modified: man.CreatedAt})
	if err != nil {
		zw.Close()
		return man, err
	}
	if err := Markdown(w, rs, kept); err != nil {
		zw.Close()
		return man, err
	}
	if err := zw.Close(); err != nil {
		return man, err
	}
	return man, f.Close()
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
