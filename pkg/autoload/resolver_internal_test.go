package autoload

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveProbes(t *testing.T) {
	for name, tc := range map[string]struct {
		options    []Option
		namespaces [][2]string
		name       string
		want       []string
	}{
		"degenerate": {},
		"path construction": {
			namespaces: [][2]string{
				{`Vendor\Pkg\`, "/srv/libs/"},
			},
			name: `Vendor\Pkg\Sub\Thing`,
			want: []string{"/srv/libs/Sub/Thing.star"},
		},
		"longest prefix probed first": {
			namespaces: [][2]string{
				{`A`, "/a"},
				{`A\B`, "/ab"},
			},
			name: `A\B\C`,
			want: []string{"/ab/C.star", "/a/B/C.star"},
		},
		"directories probed in order": {
			namespaces: [][2]string{
				{`Foo\Bar`, "/d1"},
				{`Foo\Bar`, "/d2"},
			},
			name: `Foo\Bar\Baz`,
			want: []string{"/d1/Baz.star", "/d2/Baz.star"},
		},
		"unregistered prefixes are not probed": {
			namespaces: [][2]string{
				{`vendor`, "/vendor"},
			},
			name: `other\Foo`,
		},
		"leading separator": {
			namespaces: [][2]string{
				{`Foo`, "/foo"},
			},
			name: `\Foo\Bar`,
		},
		"custom extension": {
			options: []Option{WithExtension(".php")},
			namespaces: [][2]string{
				{`vendor`, "/app/vendor"},
			},
			name: `vendor\vendor1\MyClass1`,
			want: []string{"/app/vendor/vendor1/MyClass1.php"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			var got []string
			r := New(tc.options...)
			r.stat = func(name string) (os.FileInfo, error) {
				got = append(got, name)
				return nil, os.ErrNotExist
			}
			for _, ns := range tc.namespaces {
				r.AddNamespace(ns[0], ns[1], false)
			}

			if filename, ok := r.Resolve(tc.name); ok {
				t.Fatalf("unexpected resolution: %s", filename)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithExtension(t *testing.T) {
	for name, tc := range map[string]struct {
		ext  string
		want string
	}{
		"default": {
			want: DefaultExtension,
		},
		"dotted": {
			ext:  ".php",
			want: ".php",
		},
		"undotted": {
			ext:  "php",
			want: ".php",
		},
	} {
		t.Run(name, func(t *testing.T) {
			var options []Option
			if tc.ext != "" {
				options = append(options, WithExtension(tc.ext))
			}
			got := New(options...).Extension()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
