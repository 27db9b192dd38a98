package filtersvc

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Classifier scores a text per risk category.
type Classifier interface {
	Classify(ctx context.Context, text string) (map[string]float64, error)
}

//go:embed keywords.lua
var builtinScript string

const (
	defaultScriptTimeout = 200 * time.Millisecond
	scriptRegistryMax    = 4096
)

// LuaClassifier runs a compiled Lua chunk once per text. The chunk sees the
// global `text` and returns a table of category code to score.
type LuaClassifier struct {
	name    string
	proto   *lua.FunctionProto
	timeout time.Duration
}

// LuaOption customises a LuaClassifier.
type LuaOption func(*LuaClassifier)

// WithScriptTimeout bounds a single script run.
func WithScriptTimeout(d time.Duration) LuaOption {
	return func(c *LuaClassifier) { c.timeout = d }
}

// NewLuaClassifier compiles code; name is used in error messages.
func NewLuaClassifier(name, code string, opts ...LuaOption) (*LuaClassifier, error) {
	chunk, err := parse.Parse(strings.NewReader(code), name)
	if err != nil {
		return nil, fmt.Errorf("classifier script %s: %v", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("classifier script %s: %v", name, err)
	}
	c := &LuaClassifier{name: name, proto: proto, timeout: defaultScriptTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BuiltinClassifier returns the keyword classifier shipped with the binary.
func BuiltinClassifier(opts ...LuaOption) (*LuaClassifier, error) {
	return NewLuaClassifier("builtin", builtinScript, opts...)
}

// LoadClassifier reads a script from path, or returns the built-in one when
// path is empty.
func LoadClassifier(path string, opts ...LuaOption) (*LuaClassifier, error) {
	if path == "" {
		return BuiltinClassifier(opts...)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewLuaClassifier(path, string(b), opts...)
}

var errScriptTimeout = errors.New("classifier script timeout")

// Classify runs the script in a fresh state with only the base, string,
// table and math libraries.
func (c *LuaClassifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	L := newSandboxState()
	defer L.Close()

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	L.SetContext(runCtx)
	L.SetGlobal("text", lua.LString(text))

	L.Push(L.NewFunctionFromProto(c.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("classifier script %s: %w", c.name, cerr)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, errScriptTimeout
		}
		return nil, fmt.Errorf("classifier script %s: %v", c.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return riskMapFromLua(ret)
}

func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: scriptRegistryMax,
	})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// No file or code loading from inside the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// riskMapFromLua keeps numeric entries whose key is a known category.
func riskMapFromLua(v lua.LValue) (map[string]float64, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("classifier script must return a table, got %s", v.Type())
	}
	out := map[string]float64{}
	t.ForEach(func(k, val lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok || !Categories[string(key)] {
			return
		}
		if n, ok := val.(lua.LNumber); ok {
			out[string(key)] = float64(n)
		}
	})
	return out, nil
}
