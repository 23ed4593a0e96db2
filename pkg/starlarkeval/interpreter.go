package starlarkeval

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/stackb/starlark-autoload/pkg/host"
)

// Reporter is implemented by *testing.T.
type Reporter func(format string, args ...interface{})

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter) *Interpreter

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) InterpreterOption {
	return func(i *Interpreter) *Interpreter {
		i.logger = logger
		return i
	}
}

// WithPredeclared adds a predeclared global visible to every loaded file.
func WithPredeclared(name string, value starlark.Value) InterpreterOption {
	return func(i *Interpreter) *Interpreter {
		i.predeclared[name] = value
		return i
	}
}

// Interpreter executes resolved starlark files and defines each one as a
// module in the host.  It implements autoload.Loader.
type Interpreter struct {
	host        *host.Host
	predeclared starlark.StringDict
	reporter    Reporter
	logger      zerolog.Logger

	mu       sync.Mutex
	loadErrs map[string]error
	// loading holds the names whose files are executing
	loading map[string]bool
}

// NewInterpreter constructs an Interpreter that defines modules in the
// given host.  Starlark print() output goes to the reporter.
func NewInterpreter(h *host.Host, reporter Reporter, options ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		host:     h,
		reporter: reporter,
		logger:   zerolog.Nop(),
		loadErrs: make(map[string]error),
		loading:  make(map[string]bool),
	}
	i.predeclared = starlark.StringDict{
		"struct":   starlark.NewBuiltin("struct", starlarkstruct.Make),
		"autoload": starlark.NewBuiltin("autoload", i.handleAutoload),
	}
	for _, opt := range options {
		i = opt(i)
	}
	return i
}

func (i *Interpreter) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			i.reporter("%s", msg)
		},
		Load: i.handleLoad,
	}
}

// Load executes the file and defines its frozen globals as the module
// for name.  It implements autoload.Loader.
func (i *Interpreter) Load(name, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		err = fmt.Errorf("read: %w", err)
		i.setLoadErr(name, err)
		return err
	}

	i.setLoading(name, true)
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, i.newThread(name), filename, data, i.predeclared)
	i.setLoading(name, false)
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			i.logger.Error().Str("name", name).Str("file", filename).Msg(evalErr.Backtrace())
		}
		i.setLoadErr(name, err)
		return err
	}
	globals.Freeze()

	i.host.Define(&host.Symbol{
		Name:     name,
		Filename: filename,
		Value:    &starlarkstruct.Module{Name: name, Members: globals},
	})
	i.setLoadErr(name, nil)
	i.logger.Debug().Str("name", name).Str("file", filename).Int("globals", len(globals)).Msg("loaded")

	return nil
}

// Require returns the module for name, autoloading it through the host if
// necessary.  If the file was found but failed to execute, that error is
// returned rather than a bare not-found.  Requiring a name whose file is
// still executing is a load cycle and fails.
func (i *Interpreter) Require(name string) (*starlarkstruct.Module, error) {
	if i.isLoading(name) {
		return nil, fmt.Errorf("cycle in load graph: %s", name)
	}
	sym, err := i.host.Lookup(name)
	if err != nil {
		if loadErr := i.loadErr(name); loadErr != nil {
			return nil, fmt.Errorf("loading %s: %w", name, loadErr)
		}
		return nil, err
	}
	mod, ok := sym.Value.(*starlarkstruct.Module)
	if !ok {
		return nil, fmt.Errorf("%s is not a starlark module (%T)", name, sym.Value)
	}
	return mod, nil
}

// Call calls the named global function of a module.
func (i *Interpreter) Call(mod *starlarkstruct.Module, function string, args ...starlark.Value) (starlark.Value, error) {
	fn, ok := mod.Members[function]
	if !ok {
		return nil, fmt.Errorf("%s has no member %q", mod.Name, function)
	}
	if _, ok := fn.(starlark.Callable); !ok {
		return nil, fmt.Errorf("%s.%s is not callable (%s)", mod.Name, function, fn.Type())
	}
	return starlark.Call(i.newThread(mod.Name), fn, starlark.Tuple(args), nil)
}

// handleLoad implements load("name", ...) statements.
func (i *Interpreter) handleLoad(_ *starlark.Thread, module string) (starlark.StringDict, error) {
	mod, err := i.Require(module)
	if err != nil {
		return nil, err
	}
	return mod.Members, nil
}

// handleAutoload implements the autoload(name) builtin.
func (i *Interpreter) handleAutoload(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	mod, err := i.Require(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return mod, nil
}

func (i *Interpreter) setLoadErr(name string, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err == nil {
		delete(i.loadErrs, name)
		return
	}
	i.loadErrs[name] = err
}

func (i *Interpreter) loadErr(name string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loadErrs[name]
}

func (i *Interpreter) setLoading(name string, loading bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if loading {
		i.loading[name] = true
		return
	}
	delete(i.loading, name)
}

func (i *Interpreter) isLoading(name string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loading[name]
}
