// Package host implements a registry of defined symbols that falls back to a
// chain of autoload callbacks when a name is not yet defined.
package host

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrSymbolNotFound is returned (wrapped in a *SymbolNotFoundError) when no
// autoloader could define a name.
var ErrSymbolNotFound = fmt.Errorf("symbol not found")

// AutoloadFunc is called with a fully-qualified name that is not yet defined.
// It returns the file it loaded, if any.
type AutoloadFunc = func(name string) (string, bool)

// Symbol is a defined name.
type Symbol struct {
	// Name is the fully-qualified name
	Name string
	// Filename is the file that defined the symbol, if any
	Filename string
	// Value is the runtime value bound to the name
	Value interface{}
}

// SymbolNotFoundError reports a failed lookup together with the files the
// autoload chain reported loading.
type SymbolNotFoundError struct {
	Name  string
	Files []string
}

func (e *SymbolNotFoundError) Error() string {
	if len(e.Files) == 0 {
		return fmt.Sprintf("%v: %s", ErrSymbolNotFound, e.Name)
	}
	return fmt.Sprintf("%v: %s (loaded %s)", ErrSymbolNotFound, e.Name, strings.Join(e.Files, ", "))
}

// Is makes errors.Is(err, ErrSymbolNotFound) true.
func (e *SymbolNotFoundError) Is(target error) bool {
	return target == ErrSymbolNotFound
}

// Host holds defined symbols and the autoload chain.
type Host struct {
	mu          sync.RWMutex
	symbols     map[string]*Symbol
	autoloaders []AutoloadFunc
}

// New constructs an empty Host.
func New() *Host {
	return &Host{
		symbols: make(map[string]*Symbol),
	}
}

// RegisterAutoloader adds a callback to the autoload chain.  Callbacks are
// tried in order; prepend puts this one first.
func (h *Host) RegisterAutoloader(fn func(name string) (string, bool), prepend bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prepend {
		h.autoloaders = append([]AutoloadFunc{fn}, h.autoloaders...)
	} else {
		h.autoloaders = append(h.autoloaders, fn)
	}
}

// Autoloaders returns the number of registered callbacks.
func (h *Host) Autoloaders() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.autoloaders)
}

// Define binds a symbol.  A later definition of the same name replaces the
// earlier one.
func (h *Host) Define(sym *Symbol) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.symbols[sym.Name] = sym
}

// Get returns a defined symbol without autoloading.
func (h *Host) Get(name string) (*Symbol, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sym, ok := h.symbols[name]
	return sym, ok
}

// Lookup returns the named symbol, running the autoload chain if it is not
// yet defined.  The chain stops as soon as the symbol is defined.
func (h *Host) Lookup(name string) (*Symbol, error) {
	if sym, ok := h.Get(name); ok {
		return sym, nil
	}

	h.mu.RLock()
	chain := h.autoloaders[:len(h.autoloaders):len(h.autoloaders)]
	h.mu.RUnlock()

	var files []string
	for _, autoload := range chain {
		if filename, ok := autoload(name); ok {
			files = append(files, filename)
		}
		if sym, ok := h.Get(name); ok {
			return sym, nil
		}
	}

	return nil, &SymbolNotFoundError{Name: name, Files: files}
}

// Symbols returns the defined symbols sorted by name.
func (h *Host) Symbols() []*Symbol {
	h.mu.RLock()
	defer h.mu.RUnlock()
	symbols := make([]*Symbol, 0, len(h.symbols))
	for _, sym := range h.symbols {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].Name < symbols[j].Name
	})
	return symbols
}
