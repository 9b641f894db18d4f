package hooks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	note := writeFile(t, dir, "note.txt", "from file")
	writeFile(t, dir, "a.js", `export function decorateHeader(h) { return h.server + " :: " + h.channel; }`)
	writeFile(t, dir, "b.js", `export function readNote(p) { return readText(p); }`)
	writeFile(t, dir, "c.js", `this is not javascript`)
	writeFile(t, dir, "ignored.ts", `function extendMessage() {}`)

	env, err := LoadDir(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if !env.Has("decorateHeader") {
		t.Fatal("decorateHeader not loaded")
	}
	if env.Has("extendMessage") {
		t.Fatal("non-js file was evaluated")
	}
	s, ok := env.CallString("decorateHeader", map[string]any{"server": "S", "channel": "C"})
	if !ok || s != "S :: C" {
		t.Fatalf("CallString = %q %v", s, ok)
	}
	s, ok = env.CallString("readNote", note)
	if !ok || s != "from file" {
		t.Fatalf("readText = %q %v", s, ok)
	}
}

func TestMissingDir(t *testing.T) {
	env, err := LoadDir(filepath.Join(t.TempDir(), "absent"), zerolog.Nop())
	if err != nil || env == nil {
		t.Fatalf("env=%v err=%v", env, err)
	}
	if env.Has("extendMessage") {
		t.Fatal("unexpected hook")
	}
}

func TestCallResults(t *testing.T) {
	env, _ := LoadDir("", zerolog.Nop())
	if err := env.Eval("t.js", `
function nothing() {}
function nil() { return null; }
function boom() { throw new Error("bad"); }
function obj(x) { return {n: x + 1}; }
var notFn = 3;
`); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.CallString("nothing", nil); ok {
		t.Fatal("undefined should not be a string result")
	}
	if _, ok := env.CallString("nil", nil); ok {
		t.Fatal("null should not be a string result")
	}
	if _, ok := env.Call("boom", nil); ok {
		t.Fatal("throwing hook should report failure")
	}
	if _, ok := env.Call("notFn", nil); ok {
		t.Fatal("non-function should report failure")
	}
	if env.Has("notFn") || env.Has("missing") {
		t.Fatal("Has reported a non-function")
	}
	v, ok := env.CallExported("obj", 1)
	if !ok {
		t.Fatal("obj failed")
	}
	m, _ := v.(map[string]any)
	if n, _ := m["n"].(int64); n != 2 {
		t.Fatalf("obj = %#v", v)
	}
}

func TestNilEnv(t *testing.T) {
	var env *HookEnv
	if env.Has("x") {
		t.Fatal("nil env has hook")
	}
	if _, ok := env.Call("x", nil); ok {
		t.Fatal("nil env call succeeded")
	}
}
