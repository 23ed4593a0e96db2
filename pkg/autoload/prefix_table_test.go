package autoload

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type putOp struct {
	prefix  string
	dir     string
	prepend bool
}

func TestNormalizePrefix(t *testing.T) {
	for name, tc := range map[string]struct {
		prefix string
		sep    byte
		want   string
	}{
		"degenerate": {
			sep:  '\\',
			want: `\`,
		},
		"bare": {
			prefix: `Foo\Bar`,
			sep:    '\\',
			want:   `Foo\Bar\`,
		},
		"leading and trailing": {
			prefix: `\Foo\Bar\`,
			sep:    '\\',
			want:   `Foo\Bar\`,
		},
		"repeated leading and trailing": {
			prefix: `\\\Foo\Bar\\`,
			sep:    '\\',
			want:   `Foo\Bar\`,
		},
		"interior separators kept": {
			prefix: `Foo\\Bar`,
			sep:    '\\',
			want:   `Foo\\Bar\`,
		},
		"dot": {
			prefix: ".com.example.",
			sep:    '.',
			want:   "com.example.",
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := NormalizePrefix(tc.prefix, tc.sep)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeBaseDir(t *testing.T) {
	for name, tc := range map[string]struct {
		dir  string
		want string
	}{
		"degenerate": {
			want: "/",
		},
		"root": {
			dir:  "/",
			want: "/",
		},
		"bare": {
			dir:  "/srv/libs",
			want: "/srv/libs/",
		},
		"trailing": {
			dir:  "/srv/libs//",
			want: "/srv/libs/",
		},
		"relative": {
			dir:  "vendor",
			want: "vendor/",
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := NormalizeBaseDir(tc.dir)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrefixTablePut(t *testing.T) {
	for name, tc := range map[string]struct {
		ops  []putOp
		want []Namespace
	}{
		"degenerate": {},
		"single": {
			ops: []putOp{
				{prefix: "vendor", dir: "/app/vendor"},
			},
			want: []Namespace{
				{Prefix: `vendor\`, Dirs: []string{"/app/vendor/"}},
			},
		},
		"normalized prefixes share a key": {
			ops: []putOp{
				{prefix: `\Foo\Bar\`, dir: "/d1"},
				{prefix: `Foo\Bar`, dir: "/d2"},
			},
			want: []Namespace{
				{Prefix: `Foo\Bar\`, Dirs: []string{"/d1/", "/d2/"}},
			},
		},
		"append preserves insertion order": {
			ops: []putOp{
				{prefix: `Foo\Bar`, dir: "/d1"},
				{prefix: `Foo\Bar`, dir: "/d2"},
				{prefix: `Foo\Bar`, dir: "/d3"},
			},
			want: []Namespace{
				{Prefix: `Foo\Bar\`, Dirs: []string{"/d1/", "/d2/", "/d3/"}},
			},
		},
		"prepend goes first": {
			ops: []putOp{
				{prefix: `Foo\Bar`, dir: "/d1"},
				{prefix: `Foo\Bar`, dir: "/d2", prepend: true},
			},
			want: []Namespace{
				{Prefix: `Foo\Bar\`, Dirs: []string{"/d2/", "/d1/"}},
			},
		},
		"prepend on empty list": {
			ops: []putOp{
				{prefix: `Foo`, dir: "/d1", prepend: true},
			},
			want: []Namespace{
				{Prefix: `Foo\`, Dirs: []string{"/d1/"}},
			},
		},
		"duplicates retained": {
			ops: []putOp{
				{prefix: `Foo`, dir: "/d1"},
				{prefix: `Foo`, dir: "/d1/"},
			},
			want: []Namespace{
				{Prefix: `Foo\`, Dirs: []string{"/d1/", "/d1/"}},
			},
		},
		"nested prefixes are distinct keys": {
			ops: []putOp{
				{prefix: `A\B`, dir: "/ab"},
				{prefix: `A`, dir: "/a"},
			},
			want: []Namespace{
				{Prefix: `A\`, Dirs: []string{"/a/"}},
				{Prefix: `A\B\`, Dirs: []string{"/ab/"}},
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			table := NewPrefixTable('\\')
			for _, op := range tc.ops {
				table.Put(op.prefix, op.dir, op.prepend)
			}
			got := table.Namespaces()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(len(tc.want), table.Len()); diff != "" {
				t.Errorf("len (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrefixTableGet(t *testing.T) {
	table := NewPrefixTable('\\')
	table.Put(`A\B`, "/ab", false)

	if _, ok := table.Get(`A\`); ok {
		t.Errorf("intermediate node A\\ should not have a value")
	}
	if _, ok := table.Get(`A\B`); ok {
		t.Errorf("lookup is by normalized key only")
	}
	got, ok := table.Get(`A\B\`)
	if !ok {
		t.Fatal("expected A\\B\\ to be registered")
	}
	if diff := cmp.Diff([]string{"/ab/"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestPrefixTableGetIsStable(t *testing.T) {
	table := NewPrefixTable('\\')
	table.Put(`A`, "/d1", false)
	before, _ := table.Get(`A\`)
	table.Put(`A`, "/d2", false)
	table.Put(`A`, "/d0", true)

	if diff := cmp.Diff([]string{"/d1/"}, before); diff != "" {
		t.Errorf("earlier snapshot changed (-want +got):\n%s", diff)
	}
}

func TestSeparatorSegmenter(t *testing.T) {
	type segment struct {
		Segment string
		Next    int
	}
	for name, tc := range map[string]struct {
		key  string
		want []segment
	}{
		"degenerate": {},
		"single": {
			key:  `a\`,
			want: []segment{{`a\`, -1}},
		},
		"multiple": {
			key:  `a\bc\d\`,
			want: []segment{{`a\`, 2}, {`bc\`, 5}, {`d\`, -1}},
		},
		"no trailing separator": {
			key:  `a\b`,
			want: []segment{{`a\`, 2}, {`b`, -1}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			segmenter := separatorSegmenter('\\')
			var got []segment
			for part, i := segmenter(tc.key, 0); part != ""; part, i = segmenter(tc.key, i) {
				got = append(got, segment{part, i})
				if i == -1 {
					break
				}
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
