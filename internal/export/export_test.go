package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"chatview/internal/archive"
	"chatview/internal/rows"
)

func sampleRows() []rows.Row {
	return []rows.Row{
		rows.DateRow{Date: "1/1/24"},
		rows.HeaderRow{Server: "S", Channel: "general", Category: "Text"},
		rows.MessageRow{Time: "10:00 AM", Content: "hello\nthere"},
		rows.MessageRow{Time: "10:05 AM", Content: rows.AttachmentPlaceholder, Attachments: []archive.Attachment{
			{Filename: "pic[1].png", URL: "https://x/pic.png"},
			{Filename: "local.txt"},
		}},
		rows.HeaderRow{Server: "S", Channel: "random"},
		rows.MessageRow{Time: "11:00 AM", Content: "other"},
	}
}

func TestMarkdownAll(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleRows(), nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"## 1/1/24\n",
		"### S / general (Text)\n",
		"- **10:00 AM** hello there\n",
		"  - [pic\\[1\\].png](https://x/pic.png)\n",
		"  - local.txt\n",
		"### S / random\n",
		"- **11:00 AM** other\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMarkdownKeptOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleRows(), []int{0, 4, 5, 99}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "general") || strings.Contains(out, "hello") {
		t.Fatalf("unkept rows written:\n%s", out)
	}
	if !strings.Contains(out, "other") {
		t.Fatalf("kept row missing:\n%s", out)
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sampleRows(), []int{0, 1, 3}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[1] != "  S / general" {
		t.Fatalf("header line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "<pic[1].png> <local.txt>") {
		t.Fatalf("message line = %q", lines[2])
	}
}

func TestZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "view.zip")
	man, err := Zip(p, sampleRows(), []int{0, 1, 3}, Meta{Source: "chats.json", Query: " pic "})
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	if man.Rows != 6 || man.Kept != 3 || man.Messages != 1 || man.Query != "pic" {
		t.Fatalf("manifest = %+v", man)
	}
	if len(man.Files) != 1 || man.Files[0] != "https://x/pic.png" {
		t.Fatalf("files = %v", man.Files)
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { zr.Close() })
	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(b)
	}
	var got Manifest
	if err := json.Unmarshal([]byte(files[ManifestName]), &got); err != nil {
		t.Fatalf("manifest json: %v", err)
	}
	if got.ID != man.ID || got.Version != 1 {
		t.Fatalf("manifest in zip = %+v", got)
	}
	if !strings.Contains(files[ViewName], "### S / general") || strings.Contains(files[ViewName], "hello") {
		t.Fatalf("view.md = %q", files[ViewName])
	}
}
