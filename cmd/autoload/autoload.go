// autoload resolves fully-qualified names to starlark files through a table
// of namespace prefixes, loads them, and optionally calls a function in each.
//
//	autoload -namespace 'vendor=./vendor' -call hello 'vendor\vendor1\MyClass1'
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pcj/mobyprogress"
	"github.com/rs/zerolog"

	"github.com/stackb/starlark-autoload/pkg/autoload"
	"github.com/stackb/starlark-autoload/pkg/autoloadconfig"
	"github.com/stackb/starlark-autoload/pkg/collections"
	"github.com/stackb/starlark-autoload/pkg/host"
	"github.com/stackb/starlark-autoload/pkg/index"
	"github.com/stackb/starlark-autoload/pkg/logger"
	"github.com/stackb/starlark-autoload/pkg/procutil"
	"github.com/stackb/starlark-autoload/pkg/progress"
	"github.com/stackb/starlark-autoload/pkg/starlarkeval"
)

func main() {
	log.SetPrefix("autoload: ")
	log.SetFlags(0) // don't print timestamps

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

type flags struct {
	manifest          string
	namespaces        collections.StringSlice
	prependNamespaces collections.StringSlice
	separator         string
	extension         string
	logLevel          string
	call              string
	print             bool
	list              bool
	excludes          collections.StringSlice
	preload           bool
	dryRun            bool
	outputFile        string
	dump              bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	var f flags

	fs := flag.NewFlagSet("autoload", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.manifest, "manifest", "", "optional manifest file with autoload_namespace rules and directives")
	fs.Var(&f.namespaces, "namespace", "a PREFIX=DIR namespace registration (repeatable)")
	fs.Var(&f.prependNamespaces, "prepend_namespace", "a PREFIX=DIR namespace registration searched before the others (repeatable)")
	fs.StringVar(&f.separator, "separator", "", "the hierarchy separator (default \\)")
	fs.StringVar(&f.extension, "extension", "", "the source file extension (default .star)")
	fs.StringVar(&f.logLevel, "log_level", procutil.LookupStringEnv(procutil.LogLevelEnv, logger.DefaultLevel.String()), "the log level")
	fs.StringVar(&f.call, "call", "", "the name of a function to call in each resolved module")
	fs.BoolVar(&f.print, "print", false, "print the globals of each resolved module")
	fs.BoolVar(&f.list, "list", false, "list the names that can be resolved from the registered directories")
	fs.Var(&f.excludes, "exclude", "a doublestar pattern of files to skip for -list and -preload (repeatable)")
	fs.BoolVar(&f.preload, "preload", false, "load every name that can be resolved from the registered directories")
	fs.BoolVar(&f.dryRun, "dry_run", false, "locate files without loading them")
	fs.StringVar(&f.outputFile, "output_file", "", "optional file to write a JSON report to")
	fs.BoolVar(&f.dump, "dump", procutil.LookupBoolEnv(procutil.DumpEnv, false), "dump the namespace table at debug level")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.separator != "" && len(f.separator) != 1 {
		return nil, nil, fmt.Errorf("-separator must be a single byte: %q", f.separator)
	}
	if len(fs.Args()) == 0 && !f.list && !f.preload {
		return nil, nil, errors.New("positional args should be a non-empty list of names to resolve (or use -list or -preload)")
	}

	return &f, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) error {
	f, names, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	zlog, err := logger.New(stderr, f.logLevel)
	if err != nil {
		return err
	}

	var options []autoload.Option
	var manifest *autoloadconfig.Config
	if f.manifest != "" {
		if manifest, err = autoloadconfig.LoadFile(f.manifest); err != nil {
			return err
		}
		options = append(options, manifest.Options()...)
	}
	if f.separator != "" {
		options = append(options, autoload.WithSeparator(f.separator[0]))
	}
	if f.extension != "" {
		options = append(options, autoload.WithExtension(f.extension))
	}

	h := host.New()
	interpreter := starlarkeval.NewInterpreter(h, func(format string, args ...interface{}) {
		fmt.Fprintf(stdout, format+"\n", args...)
	}, starlarkeval.WithLogger(zlog))
	options = append(options, autoload.WithLoader(interpreter), autoload.WithLogger(zlog))

	resolver := autoload.New(options...)
	if manifest != nil {
		manifest.Apply(resolver)
	}
	if err := addNamespaces(resolver, f.namespaces, false); err != nil {
		return err
	}
	if err := addNamespaces(resolver, f.prependNamespaces, true); err != nil {
		return err
	}
	resolver.Register(h, false)

	if f.dump {
		zlog.Debug().Msg("namespace table:\n" + spew.Sdump(resolver.Namespaces()))
		if zlog.GetLevel() <= zerolog.DebugLevel {
			for _, ns := range resolver.Namespaces() {
				for _, dir := range ns.Dirs {
					if err := collections.ListFiles(dir); err != nil {
						zlog.Warn().Err(err).Str("dir", dir).Msg("list files failed")
					}
				}
			}
		}
	}

	if f.list {
		all, err := resolver.Names(f.excludes...)
		if err != nil {
			return err
		}
		for _, name := range all {
			fmt.Fprintln(stdout, name)
		}
	}

	c := &command{
		flags:       f,
		stdout:      stdout,
		logger:      zlog,
		host:        h,
		resolver:    resolver,
		interpreter: interpreter,
	}

	var resolutions []*index.ResolutionSpec
	if f.preload {
		all, err := resolver.Names(f.excludes...)
		if err != nil {
			return err
		}
		resolutions = append(resolutions, c.preload(all, stderr)...)
	}
	for _, name := range names {
		resolutions = append(resolutions, c.resolve(name))
	}

	spec := c.report(resolutions)
	if f.outputFile != "" {
		if err := index.WriteJSONFile(f.outputFile, spec); err != nil {
			return err
		}
	}

	if unresolved := spec.Unresolved(); len(unresolved) > 0 {
		return fmt.Errorf("unresolved: %s", strings.Join(unresolved, ", "))
	}
	for _, r := range resolutions {
		if r.Error != "" {
			return fmt.Errorf("%s: %s", r.Name, r.Error)
		}
	}
	return nil
}

// addNamespaces parses PREFIX=DIR values and registers them.
func addNamespaces(r *autoload.Resolver, values []string, prepend bool) error {
	for _, value := range values {
		prefix, dir, ok := strings.Cut(value, "=")
		if !ok || prefix == "" || dir == "" {
			return fmt.Errorf("invalid namespace %q: want PREFIX=DIR", value)
		}
		r.AddNamespace(prefix, dir, prepend)
	}
	return nil
}

type command struct {
	*flags
	stdout      io.Writer
	logger      zerolog.Logger
	host        *host.Host
	resolver    *autoload.Resolver
	interpreter *starlarkeval.Interpreter
}

// resolve handles a single name according to the flags and prints the
// outcome.
func (c *command) resolve(name string) *index.ResolutionSpec {
	result := &index.ResolutionSpec{Name: name}

	if c.dryRun {
		result.Filename, result.Found = c.resolver.Locate(name)
		c.printResult(result)
		return result
	}

	mod, err := c.interpreter.Require(name)
	if err != nil {
		// a file that was found but failed to load is still reported
		result.Filename, result.Found = c.resolver.Locate(name)
		if result.Found {
			result.Error = err.Error()
		}
		c.printResult(result)
		return result
	}

	result.Found = true
	if sym, ok := c.host.Get(name); ok {
		result.Filename = sym.Filename
	}
	c.printResult(result)

	if c.print {
		fmt.Fprint(c.stdout, starlarkeval.FormatModule(mod))
	}
	if c.call != "" {
		value, err := c.interpreter.Call(mod, c.call)
		if err != nil {
			result.Error = err.Error()
		} else {
			fmt.Fprintln(c.stdout, value.String())
		}
	}

	return result
}

// preload loads every name, reporting progress.  Names already loaded as a
// dependency of an earlier one are not loaded again.
func (c *command) preload(names []string, stderr io.Writer) []*index.ResolutionSpec {
	output := progress.NewProgressOutput(stderr)

	resolutions := make([]*index.ResolutionSpec, 0, len(names))
	for i, name := range names {
		result := &index.ResolutionSpec{Name: name}
		if _, err := c.interpreter.Require(name); err != nil {
			c.logger.Warn().Err(err).Str("name", name).Msg("preload failed")
			result.Error = err.Error()
		}
		result.Filename, result.Found = c.resolver.Locate(name)
		resolutions = append(resolutions, result)

		writePreloadProgress(output, i+1, len(names), i+1 == len(names))
	}
	return resolutions
}

func (c *command) printResult(result *index.ResolutionSpec) {
	switch {
	case !result.Found:
		fmt.Fprintf(c.stdout, "%s (not found)\n", result.Name)
	case result.Error != "":
		fmt.Fprintf(c.stdout, "%s %s (error)\n", result.Name, result.Filename)
	default:
		fmt.Fprintf(c.stdout, "%s %s\n", result.Name, result.Filename)
	}
}

// report builds the JSON report of the run.
func (c *command) report(resolutions []*index.ResolutionSpec) *index.IndexSpec {
	spec := &index.IndexSpec{
		Separator:   string(c.resolver.Separator()),
		Extension:   c.resolver.Extension(),
		Resolutions: resolutions,
	}
	for _, ns := range c.resolver.Namespaces() {
		spec.Namespaces = append(spec.Namespaces, &index.NamespaceSpec{
			Prefix: ns.Prefix,
			Dirs:   ns.Dirs,
		})
	}
	return spec
}

func writePreloadProgress(output mobyprogress.Output, current, total int, lastUpdate bool) {
	output.WriteProgress(mobyprogress.Progress{
		ID:         "preload",
		Action:     "loading",
		Current:    int64(current),
		Total:      int64(total),
		Units:      "files",
		LastUpdate: lastUpdate,
	})
}
