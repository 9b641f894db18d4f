package hooks

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// Known hook functions. Anything else a script defines is ignored.
var Known = []string{"extendMessage", "decorateHeader"}

type HookEnv struct {
	rt  *goja.Runtime
	log zerolog.Logger
}

// LoadDir evaluates every .js file in dir into one runtime. A missing or
// unreadable dir yields an empty env, not an error.
func LoadDir(dir string, log zerolog.Logger) (*HookEnv, error) {
	log = log.With().Str("component", "hooks").Logger()
	env := &HookEnv{rt: goja.New(), log: log}
	env.rt.Set("readText", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		b, err := os.ReadFile(call.Arguments[0].String())
		if err != nil {
			return goja.Null()
		}
		return env.rt.ToValue(string(b))
	})
	if dir == "" {
		return env, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return env, nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".js" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if err := env.Eval(name, string(b)); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("error evaluating hook file")
		} else {
			log.Debug().Str("file", name).Msg("loaded hook file")
		}
	}
	for _, name := range Known {
		if env.Has(name) {
			log.Debug().Str("fn", name).Msg("hook available")
		}
	}
	return env, nil
}

// Eval runs a script in the env, stripping simple ESM export keywords.
func (h *HookEnv) Eval(name, code string) error {
	code = strings.ReplaceAll(code, "export function ", "function ")
	code = strings.ReplaceAll(code, "export const ", "const ")
	code = strings.ReplaceAll(code, "export let ", "let ")
	code = strings.ReplaceAll(code, "export var ", "var ")
	_, err := h.rt.RunScript(name, code)
	return err
}

// Has reports whether fn is defined as a function.
func (h *HookEnv) Has(fn string) bool {
	if h == nil || h.rt == nil {
		return false
	}
	_, ok := goja.AssertFunction(h.rt.Get(fn))
	return ok
}

func (h *HookEnv) Call(fn string, arg any) (goja.Value, bool) {
	if h == nil || h.rt == nil {
		return goja.Undefined(), false
	}
	v := h.rt.Get(fn)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return goja.Undefined(), false
	}
	f, ok := goja.AssertFunction(v)
	if !ok {
		h.log.Debug().Str("fn", fn).Msg("symbol is not a function")
		return goja.Undefined(), false
	}
	rv, err := f(goja.Undefined(), h.rt.ToValue(arg))
	if err != nil {
		h.log.Warn().Err(err).Str("fn", fn).Msg("hook call failed")
		return goja.Undefined(), false
	}
	return rv, true
}

func (h *HookEnv) CallString(fn string, arg any) (string, bool) {
	if rv, ok := h.Call(fn, arg); ok {
		if goja.IsUndefined(rv) || goja.IsNull(rv) {
			return "", false
		}
		return rv.String(), true
	}
	return "", false
}

func (h *HookEnv) CallExported(fn string, arg any) (any, bool) {
	if rv, ok := h.Call(fn, arg); ok {
		return rv.Export(), true
	}
	return nil, false
}
