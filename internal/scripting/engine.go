package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for world generation and build scripting.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerAPI()

	// Core helpers first, then world scripts that may call them
	for _, sub := range []string{"core", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// registerAPI exposes a small logging surface to scripts.
func (e *Engine) registerAPI() {
	e.vm.SetGlobal("log_info", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	e.vm.SetGlobal("log_debug", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
}

// SetWorldSize publishes the grid size to scripts as WORLD_WIDTH and WORLD_HEIGHT.
func (e *Engine) SetWorldSize(width, height int) {
	e.vm.SetGlobal("WORLD_WIDTH", lua.LNumber(width))
	e.vm.SetGlobal("WORLD_HEIGHT", lua.LNumber(height))
}

// HasFunction reports whether a global Lua function with the given name exists.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// GenerateTile calls generate_tile(x, y, width, height) and returns the tile
// type name it yields. ok is false when the function is missing or fails.
func (e *Engine) GenerateTile(x, y, width, height int) (string, bool) {
	fn := e.vm.GetGlobal("generate_tile")
	if fn == lua.LNil {
		return "", false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(x), lua.LNumber(y), lua.LNumber(width), lua.LNumber(height)); err != nil {
		e.log.Error("lua generate_tile error", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return "", false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	s, ok := result.(lua.LString)
	if !ok {
		e.log.Error("lua generate_tile returned non-string", zap.String("type", result.Type().String()))
		return "", false
	}
	return string(s), true
}

// JobDuration calls job_duration(object_type) for the work time of a placement
// job. Returns fallback when the function is missing or yields a non-positive number.
func (e *Engine) JobDuration(objectType string, fallback float64) float64 {
	fn := e.vm.GetGlobal("job_duration")
	if fn == lua.LNil {
		return fallback
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(objectType)); err != nil {
		e.log.Error("lua job_duration error", zap.String("object", objectType), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || n <= 0 {
		return fallback
	}
	return float64(n)
}

// BuildOrder is one scripted rectangle of build work.
type BuildOrder struct {
	Mode   string // "foundation", "bulldoze" or "object"
	Type   string // object type, only for "object"
	X1, Y1 int
	X2, Y2 int
}

// BuildOrders calls build_orders() and unpacks the list of order tables it returns.
// A missing function yields no orders. Entries that are not tables are skipped.
func (e *Engine) BuildOrders() ([]BuildOrder, error) {
	fn := e.vm.GetGlobal("build_orders")
	if fn == lua.LNil {
		return nil, nil
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return nil, fmt.Errorf("lua build_orders: %w", err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	list, ok := result.(*lua.LTable)
	if !ok {
		if result == lua.LNil {
			return nil, nil
		}
		return nil, fmt.Errorf("lua build_orders returned %s, want table", result.Type())
	}

	orders := make([]BuildOrder, 0, list.Len())
	for i := 1; i <= list.Len(); i++ {
		t, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			e.log.Warn("lua build_orders: skipping non-table entry", zap.Int("index", i))
			continue
		}
		o := BuildOrder{
			Mode: lStr(t, "mode"),
			Type: lStr(t, "type"),
			X1:   lInt(t, "x1"),
			Y1:   lInt(t, "y1"),
			X2:   lInt(t, "x2"),
			Y2:   lInt(t, "y2"),
		}
		// A single-tile order may omit the second corner.
		if t.RawGetString("x2") == lua.LNil {
			o.X2 = o.X1
		}
		if t.RawGetString("y2") == lua.LNil {
			o.Y2 = o.Y1
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// DoString runs an inline chunk, e.g. from an operator console.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
