package autoload

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dghubble/trie"
)

// PrefixTable maps normalized namespace prefixes to an ordered list of base
// directories.  The order of the directories is the search order.
type PrefixTable struct {
	sep byte

	mu    sync.RWMutex
	dirs  *trie.PathTrie
	count int
}

// NewPrefixTable constructs a new empty PrefixTable for names delimited by
// the given separator.
func NewPrefixTable(sep byte) *PrefixTable {
	return &PrefixTable{
		sep: sep,
		dirs: trie.NewPathTrieWithConfig(&trie.PathTrieConfig{
			Segmenter: separatorSegmenter(sep),
		}),
	}
}

// Separator returns the hierarchy separator for keys in this table.
func (t *PrefixTable) Separator() byte {
	return t.sep
}

// Put appends (or prepends) the base directory to the list for the given
// prefix.  Both values are normalized first.  Duplicates are retained.
func (t *PrefixTable) Put(prefix, baseDir string, prepend bool) {
	key := NormalizePrefix(prefix, t.sep)
	dir := NormalizeBaseDir(baseDir)

	t.mu.Lock()
	defer t.mu.Unlock()

	var list []string
	if value := t.dirs.Get(key); value != nil {
		list = value.([]string)
	} else {
		t.count++
	}
	if prepend {
		list = append([]string{dir}, list...)
	} else {
		list = append(list[:len(list):len(list)], dir)
	}
	t.dirs.Put(key, list)
}

// Get returns the base directories registered for the (already normalized)
// prefix.  The returned slice must not be modified.
func (t *PrefixTable) Get(prefix string) ([]string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	value := t.dirs.Get(prefix)
	if value == nil {
		return nil, false
	}
	return value.([]string), true
}

// Len returns the number of distinct prefixes.
func (t *PrefixTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Namespaces returns a snapshot of the table sorted by prefix.
func (t *PrefixTable) Namespaces() []Namespace {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var namespaces []Namespace
	t.dirs.Walk(func(key string, value interface{}) error {
		dirs := value.([]string)
		namespaces = append(namespaces, Namespace{
			Prefix: key,
			Dirs:   append([]string(nil), dirs...),
		})
		return nil
	})
	sort.Slice(namespaces, func(i, j int) bool {
		return namespaces[i].Prefix < namespaces[j].Prefix
	})
	return namespaces
}

// Namespace is a prefix together with its base directories, in search order.
type Namespace struct {
	Prefix string
	Dirs   []string
}

// NormalizePrefix strips all leading and trailing separators from the prefix
// and appends exactly one.
func NormalizePrefix(prefix string, sep byte) string {
	cut := string(sep)
	return strings.Trim(prefix, cut) + cut
}

// NormalizeBaseDir strips trailing path separators from the directory and
// appends exactly one.
func NormalizeBaseDir(dir string) string {
	cut := string(os.PathSeparator)
	return strings.TrimRight(dir, cut) + cut
}

// separatorSegmenter segments keys after each separator.  For example,
// `a\b\` -> (`a\`, 2), (`b\`, -1) in successive calls.  It does not allocate
// any heap memory.
func separatorSegmenter(sep byte) trie.StringSegmenter {
	return func(path string, start int) (segment string, next int) {
		if len(path) == 0 || start < 0 || start > len(path)-1 {
			return "", -1
		}
		end := strings.IndexByte(path[start:], sep)
		if end == -1 || start+end+1 >= len(path) {
			return path[start:], -1
		}
		return path[start : start+end+1], start + end + 1
	}
}
