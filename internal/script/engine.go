// Package script runs Lua programs against a rope.
//
// Scripts see a global table named rope:
//
//	rope.insert(pos, text)
//	rope.delete(pos, count)
//	rope.replace(pos, count, text)
//	rope.len()          -- codepoints
//	rope.bytes()        -- bytes
//	rope.text()
//	rope.slice(pos, count)
//	rope.check()
//
// Positions and counts are 0-based Unicode codepoints. Only the base,
// table, string and math libraries are opened.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/skiprope/internal/logging"
	"github.com/dshills/skiprope/rope"
)

// ErrClosed is returned when running a script on a closed engine.
var ErrClosed = errors.New("script engine is closed")

// Engine is a Lua state bound to one rope.
//
// An Engine is not safe for concurrent scripts; Run serializes callers.
type Engine struct {
	L    *lua.LState
	rope *rope.Rope
	out  io.Writer

	mu     sync.Mutex
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput sends the output of Lua print calls to w.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.out = w
	}
}

// NewEngine creates an engine that edits r.
func NewEngine(r *rope.Rope, opts ...Option) *Engine {
	e := &Engine{rope: r, out: io.Discard}
	for _, opt := range opts {
		opt(e)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base opens loaders that reach the file system.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(e.print))

	e.L = L
	e.register()
	return e
}

func (e *Engine) register() {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"insert":  e.insert,
		"delete":  e.delete,
		"replace": e.replace,
		"len":     e.length,
		"bytes":   e.bytes,
		"text":    e.text,
		"slice":   e.slice,
		"check":   e.check,
	})
	e.L.SetGlobal("rope", mod)
}

// Rope returns the rope the engine edits.
func (e *Engine) Rope() *rope.Rope {
	return e.rope
}

// Run executes src. Cancelling ctx aborts the script.
func (e *Engine) Run(ctx context.Context, src string) error {
	return e.do(ctx, "chunk", func() error {
		return e.L.DoString(src)
	})
}

// RunFile executes the Lua file at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.do(ctx, path, func() error {
		fn, err := e.L.Load(bytes.NewReader(src), path)
		if err != nil {
			return err
		}
		e.L.Push(fn)
		return e.L.PCall(0, lua.MultRet, nil)
	})
}

func (e *Engine) do(ctx context.Context, name string, fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic in %s: %v", name, r)
		}
	}()

	top := e.L.GetTop()
	err = fn()
	e.L.SetTop(top)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		logging.L.Debug("script failed", "script", name, "err", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Close releases the Lua state. The rope is left open.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.L.Close()
	e.closed = true
}

func (e *Engine) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(e.out, strings.Join(parts, "\t"))
	return 0
}

// checkPos reads a non-negative integer argument.
func checkPos(L *lua.LState, n int, what string) int {
	v := L.CheckInt(n)
	if v < 0 {
		L.ArgError(n, what+" must be non-negative")
	}
	return v
}

// insert(pos, text)
func (e *Engine) insert(L *lua.LState) int {
	pos := checkPos(L, 1, "pos")
	text := L.CheckString(2)

	if err := e.rope.InsertString(pos, text); err != nil {
		L.RaiseError("insert: %v", err)
	}
	return 0
}

// delete(pos, count)
func (e *Engine) delete(L *lua.LState) int {
	pos := checkPos(L, 1, "pos")
	count := checkPos(L, 2, "count")

	e.rope.Delete(pos, count)
	return 0
}

// replace(pos, count, text)
func (e *Engine) replace(L *lua.LState) int {
	pos := checkPos(L, 1, "pos")
	count := checkPos(L, 2, "count")
	text := L.CheckString(3)

	if err := e.rope.Replace(pos, count, []byte(text)); err != nil {
		L.RaiseError("replace: %v", err)
	}
	return 0
}

// len() -> number of codepoints
func (e *Engine) length(L *lua.LState) int {
	L.Push(lua.LNumber(e.rope.CharCount()))
	return 1
}

// bytes() -> number of bytes
func (e *Engine) bytes(L *lua.LState) int {
	L.Push(lua.LNumber(e.rope.ByteCount()))
	return 1
}

// text() -> string
func (e *Engine) text(L *lua.LState) int {
	L.Push(lua.LString(e.rope.String()))
	return 1
}

// slice(pos, count) -> string
func (e *Engine) slice(L *lua.LState) int {
	pos := checkPos(L, 1, "pos")
	count := checkPos(L, 2, "count")

	L.Push(lua.LString(e.rope.Slice(pos, count)))
	return 1
}

// check() -> true, or raises on corruption
func (e *Engine) check(L *lua.LState) int {
	if err := e.rope.Check(); err != nil {
		L.RaiseError("check: %v", err)
	}
	L.Push(lua.LTrue)
	return 1
}
