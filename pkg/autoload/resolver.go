package autoload

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultSeparator delimits namespace segments in a fully-qualified name,
	// as in `vendor\vendor1\MyClass1`.
	DefaultSeparator = '\\'
	// DefaultExtension is the source file extension probed for a name.
	DefaultExtension = ".star"
)

// Option configures a Resolver.
type Option func(*Resolver) *Resolver

// WithSeparator sets the hierarchy separator used for prefixes and names.
// It must be given before any namespace is added.
func WithSeparator(sep byte) Option {
	return func(r *Resolver) *Resolver {
		r.table = NewPrefixTable(sep)
		return r
	}
}

// WithExtension sets the source file extension.  A leading dot is added if
// missing.
func WithExtension(ext string) Option {
	return func(r *Resolver) *Resolver {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.ext = ext
		return r
	}
}

// WithLoader sets the loader invoked for a resolved file.
func WithLoader(loader Loader) Option {
	return func(r *Resolver) *Resolver {
		r.loader = loader
		return r
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) *Resolver {
		r.logger = logger
		return r
	}
}

var defaultOptions = []Option{
	WithSeparator(DefaultSeparator),
	WithExtension(DefaultExtension),
	WithLoader(nopLoader{}),
	WithLogger(zerolog.Nop()),
}

// Resolver maps fully-qualified names to source files via registered
// namespace prefixes, and loads the file that is expected to define the name.
//
// Given a foo-bar package at the following paths:
//
//	/path/to/packages/foo-bar/
//	    src/
//	        Baz.star            # Foo\Bar\Baz
//	        Qux/
//	            Quux.star       # Foo\Bar\Qux\Quux
//	    tests/
//	        BazTest.star        # Foo\Bar\BazTest
//
// registering both directories for the Foo\Bar prefix:
//
//	r.AddNamespace(`Foo\Bar`, "/path/to/packages/foo-bar/src", false)
//	r.AddNamespace(`Foo\Bar`, "/path/to/packages/foo-bar/tests", false)
//
// resolves Foo\Bar\Qux\Quux to /path/to/packages/foo-bar/src/Qux/Quux.star and
// Foo\Bar\BazTest to /path/to/packages/foo-bar/tests/BazTest.star.
type Resolver struct {
	table  *PrefixTable
	ext    string
	loader Loader
	logger zerolog.Logger

	// stat is swapped in tests
	stat func(name string) (os.FileInfo, error)
}

// New constructs a new Resolver with an empty prefix table.
func New(options ...Option) *Resolver {
	r := &Resolver{stat: os.Stat}
	for _, opt := range append(defaultOptions, options...) {
		r = opt(r)
	}
	return r
}

// Table returns the underlying prefix table.
func (r *Resolver) Table() *PrefixTable {
	return r.table
}

// Extension returns the source file extension, including the leading dot.
func (r *Resolver) Extension() string {
	return r.ext
}

// Separator returns the hierarchy separator.
func (r *Resolver) Separator() byte {
	return r.table.Separator()
}

// AddNamespace adds a base directory for a namespace prefix.  When prepend is
// true the directory is searched before those already registered, otherwise
// after.  The directory need not exist.
func (r *Resolver) AddNamespace(prefix, baseDir string, prepend bool) {
	r.table.Put(prefix, baseDir, prepend)
	r.logger.Debug().
		Str("prefix", NormalizePrefix(prefix, r.table.sep)).
		Str("dir", NormalizeBaseDir(baseDir)).
		Bool("prepend", prepend).
		Msg("added namespace")
}

// Namespaces returns a snapshot of the registered namespaces, sorted by
// prefix.
func (r *Resolver) Namespaces() []Namespace {
	return r.table.Namespaces()
}

// Register installs Resolve as an autoload callback of the host.
func (r *Resolver) Register(host Registrar, prepend bool) {
	host.RegisterAutoloader(r.Resolve, prepend)
}

// Resolve loads the file for the given fully-qualified name.  Prefixes are
// tried longest first; the filename of the first file found is returned. If
// no file is found, ok is false.
func (r *Resolver) Resolve(name string) (filename string, ok bool) {
	return r.resolve(name, true)
}

// Locate is like Resolve but does not load the file.
func (r *Resolver) Locate(name string) (filename string, ok bool) {
	return r.resolve(name, false)
}

func (r *Resolver) resolve(name string, load bool) (string, bool) {
	sep := r.table.sep
	prefix := name

	// scan from the right: each iteration shortens the candidate prefix by
	// one segment.
	for {
		pos := strings.LastIndexByte(prefix, sep)
		if pos == -1 {
			break
		}
		prefix = name[:pos+1]
		relative := name[pos+1:]

		if filename, ok := r.loadMappedFile(name, prefix, relative, load); ok {
			return filename, true
		}

		prefix = strings.TrimRight(prefix, string(sep))
	}

	r.logger.Debug().Str("name", name).Msg("not found")
	return "", false
}

// loadMappedFile probes the directories of the prefix in order and loads the
// first file that exists.
func (r *Resolver) loadMappedFile(name, prefix, relative string, load bool) (string, bool) {
	dirs, ok := r.table.Get(prefix)
	if !ok {
		return "", false
	}

	for _, dir := range dirs {
		filename := r.filename(dir, relative)
		if !r.exists(filename) {
			r.logger.Debug().Str("name", name).Str("file", filename).Msg("miss")
			continue
		}
		if load {
			r.requireFile(name, filename)
		}
		r.logger.Debug().Str("name", name).Str("prefix", prefix).Str("file", filename).Msg("resolved")
		return filename, true
	}

	return "", false
}

// filename builds the candidate file for a relative name under the given
// (normalized) base directory.
func (r *Resolver) filename(dir, relative string) string {
	return dir + strings.ReplaceAll(relative, string(r.table.sep), string(os.PathSeparator)) + r.ext
}

// exists reports whether the file is a regular file.  Any stat failure counts
// as absent.
func (r *Resolver) exists(filename string) bool {
	info, err := r.stat(filename)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (r *Resolver) requireFile(name, filename string) {
	if err := r.loader.Load(name, filename); err != nil {
		r.logger.Error().Err(err).Str("name", name).Str("file", filename).Msg("load failed")
	}
}
