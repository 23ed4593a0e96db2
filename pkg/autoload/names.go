package autoload

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Names enumerates the fully-qualified names that can be resolved from the
// files currently present under the registered directories.  Exclude
// patterns are doublestar patterns matched against the slash-separated path
// of the file relative to its base directory.  When several directories
// provide the same name, the one that Resolve would pick wins; the result is
// sorted.
func (r *Resolver) Names(excludes ...string) ([]string, error) {
	for _, exclude := range excludes {
		if !doublestar.ValidatePattern(exclude) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", exclude)
		}
	}

	sep := string(r.table.sep)
	pattern := "**/*" + r.ext
	seen := make(map[string]bool)
	var names []string

	for _, ns := range r.table.Namespaces() {
		for _, dir := range ns.Dirs {
			matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %s%s: %w", dir, pattern, err)
			}
		loop:
			for _, match := range matches {
				for _, exclude := range excludes {
					if ok, _ := doublestar.Match(exclude, match); ok {
						continue loop
					}
				}
				if path.Base(match) == r.ext {
					continue
				}
				rel := strings.TrimSuffix(match, r.ext)
				name := ns.Prefix + strings.ReplaceAll(rel, "/", sep)
				if seen[name] {
					continue
				}
				// a longer prefix may shadow this file for the same name.
				if filename, ok := r.Locate(name); !ok || filename != r.filename(dir, strings.ReplaceAll(rel, "/", sep)) {
					continue
				}
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	sort.Strings(names)
	return names, nil
}
