package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleArchive = `[
	{"server":"S","channel":"general","date":"2024-01-01T10:00:00Z","content":"hello world"},
	{"server":"S","channel":"general","date":"2024-01-01T10:05:00Z","content":"unrelated"},
	{"server":"S","channel":"random","date":"2024-01-02T09:00:00Z","content":"HELLO again",
	 "attachments":[{"filename":"cat.png","url":"https://x/cat.png"}]}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	out, err := execute(t, missing)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "File not found: "+missing) {
		t.Fatalf("out = %q", out)
	}
}

func TestBatchDumpAndExport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "chats.json")
	if err := os.WriteFile(src, []byte(sampleArchive), 0o644); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(dir, "out", "view.md")
	zp := filepath.Join(dir, "out", "view.zip")
	out, err := execute(t, src,
		"--config", filepath.Join(dir, "none.json"),
		"--hooks-dir", filepath.Join(dir, "hooks"),
		"--no-cache",
		"-s", "hello",
		"--dump", md,
		"--export", zp,
	)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote 6 rows") || !strings.Contains(out, "(2 messages)") {
		t.Fatalf("out = %q", out)
	}
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "unrelated") || !strings.Contains(string(b), "HELLO again") {
		t.Fatalf("dump = %s", b)
	}
	if _, err := os.Stat(zp); err != nil {
		t.Fatalf("zip missing: %v", err)
	}
}

func TestBadArchive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(src, []byte(`{"not":"a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, src, "--config", filepath.Join(dir, "none.json"), "--dump", filepath.Join(dir, "x.md"))
	if err == nil || !strings.Contains(err.Error(), "list of objects") {
		t.Fatalf("err = %v", err)
	}
}
