package autoloadconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bazelbuild/bazel-gazelle/rule"
	"github.com/bazelbuild/buildtools/build"

	"github.com/stackb/starlark-autoload/pkg/autoload"
)

const (
	separatorDirective = "autoload_separator"
	extensionDirective = "autoload_extension"
	namespaceDirective = "autoload_namespace"
	namespaceRuleKind  = "autoload_namespace"
)

// DirectiveNames returns the names of the recognized directives.
func DirectiveNames() []string {
	return []string{
		separatorDirective,
		extensionDirective,
		namespaceDirective,
	}
}

// Namespace is a single prefix -> base directory registration.
type Namespace struct {
	Prefix  string
	Dir     string
	Prepend bool
}

// Config is the content of a manifest file.  Namespaces are in registration
// order: directives first, then autoload_namespace rules, each in file order.
type Config struct {
	// Filename is the manifest path
	Filename string
	// Separator is the hierarchy separator, zero if not configured
	Separator byte
	// Extension is the source file extension, empty if not configured
	Extension string
	// Namespaces are the registrations
	Namespaces []*Namespace
}

// LoadFile reads and parses a manifest file.
func LoadFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(filename, data)
}

// Parse parses manifest content.  Relative directories are resolved against
// the directory of filename.
func Parse(filename string, data []byte) (*Config, error) {
	f, err := rule.LoadData(filename, "", data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	c := &Config{Filename: filename}
	if err := c.parseDirectives(f.Directives); err != nil {
		return nil, err
	}
	for _, r := range f.Rules {
		if r.Kind() != namespaceRuleKind {
			continue
		}
		if err := c.parseNamespaceRule(r); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return c, nil
}

// Options returns the resolver options this config implies.
func (c *Config) Options() []autoload.Option {
	var options []autoload.Option
	if c.Separator != 0 {
		options = append(options, autoload.WithSeparator(c.Separator))
	}
	if c.Extension != "" {
		options = append(options, autoload.WithExtension(c.Extension))
	}
	return options
}

// Apply adds the namespaces to the resolver.
func (c *Config) Apply(r *autoload.Resolver) {
	for _, ns := range c.Namespaces {
		r.AddNamespace(ns.Prefix, ns.Dir, ns.Prepend)
	}
}

func (c *Config) parseDirectives(directives []rule.Directive) error {
	for _, d := range directives {
		switch d.Key {
		case separatorDirective:
			if len(d.Value) != 1 {
				return fmt.Errorf(`invalid directive: "gazelle:%s %s": separator must be a single byte`, d.Key, d.Value)
			}
			c.Separator = d.Value[0]
		case extensionDirective:
			if d.Value == "" {
				return fmt.Errorf(`invalid directive: "gazelle:%s": extension is required`, d.Key)
			}
			c.Extension = d.Value
		case namespaceDirective:
			if err := c.parseNamespaceDirective(d); err != nil {
				return fmt.Errorf(`invalid directive: "gazelle:%s %s": %w`, d.Key, d.Value, err)
			}
		}
	}
	return nil
}

// parseNamespaceDirective parses "PREFIX DIR [prepend]".
func (c *Config) parseNamespaceDirective(d rule.Directive) error {
	fields := strings.Fields(d.Value)
	if len(fields) < 2 || len(fields) > 3 {
		return fmt.Errorf("want PREFIX DIR [prepend], got %d fields", len(fields))
	}
	prepend := false
	if len(fields) == 3 {
		if fields[2] != "prepend" {
			return fmt.Errorf("unknown option %q (want 'prepend')", fields[2])
		}
		prepend = true
	}
	c.add(fields[0], []string{fields[1]}, prepend)
	return nil
}

func (c *Config) parseNamespaceRule(r *rule.Rule) error {
	prefix := r.AttrString("prefix")
	if prefix == "" {
		return fmt.Errorf("%s: prefix is required", r.Kind())
	}

	dirs := r.AttrStrings("dirs")
	if dir := r.AttrString("dir"); dir != "" {
		dirs = append([]string{dir}, dirs...)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%s %q: one of dir or dirs is required", r.Kind(), prefix)
	}

	prepend, err := attrBool(r, "prepend")
	if err != nil {
		return fmt.Errorf("%s %q: %w", r.Kind(), prefix, err)
	}

	c.add(prefix, dirs, prepend)
	return nil
}

// add records the dirs for prefix.  Prepended dirs keep their relative order
// at the front of the search list.
func (c *Config) add(prefix string, dirs []string, prepend bool) {
	if prepend {
		for i := len(dirs) - 1; i >= 0; i-- {
			c.Namespaces = append(c.Namespaces, &Namespace{Prefix: prefix, Dir: c.resolveDir(dirs[i]), Prepend: true})
		}
		return
	}
	for _, dir := range dirs {
		c.Namespaces = append(c.Namespaces, &Namespace{Prefix: prefix, Dir: c.resolveDir(dir)})
	}
}

func (c *Config) resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(filepath.Dir(c.Filename), dir)
}

func attrBool(r *rule.Rule, key string) (bool, error) {
	switch expr := r.Attr(key).(type) {
	case nil:
		return false, nil
	case *build.Ident:
		switch expr.Name {
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
		return false, fmt.Errorf("%s: want True or False, got %s", key, expr.Name)
	default:
		return false, fmt.Errorf("%s: want True or False, got %T", key, expr)
	}
}
