package starlarkeval

import (
	"strings"
	"testing"

	"github.com/bazelbuild/buildtools/build"
	"github.com/google/go-cmp/cmp"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

func TestConvValue(t *testing.T) {
	dict := starlark.NewDict(1)
	dict.SetKey(starlark.String("a"), starlark.True)

	for name, tc := range map[string]struct {
		value starlark.Value
		want  string
	}{
		"none": {
			value: starlark.None,
			want:  "None",
		},
		"bool": {
			value: starlark.False,
			want:  "False",
		},
		"int": {
			value: starlark.MakeInt(42),
			want:  "42",
		},
		"string": {
			value: starlark.String("hello"),
			want:  `"hello"`,
		},
		"list": {
			value: starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a")}),
			want:  "[\n    1,\n    \"a\",\n]",
		},
		"tuple": {
			value: starlark.Tuple{starlark.MakeInt(1), starlark.String("a")},
			want:  `(1, "a")`,
		},
		"dict": {
			value: dict,
			want:  `{"a": True}`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			expr := ConvValue(tc.value)
			if expr == nil {
				t.Fatalf("no expression for %v", tc.value)
			}
			got := build.FormatString(expr)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvValueUnrepresentable(t *testing.T) {
	builtin := starlark.NewBuiltin("f", nil)
	for name, value := range map[string]starlark.Value{
		"builtin":          builtin,
		"list of builtin":  starlark.NewList([]starlark.Value{builtin}),
		"tuple of builtin": starlark.Tuple{starlark.None, builtin},
		"module":           &starlarkstruct.Module{Name: "m"},
	} {
		t.Run(name, func(t *testing.T) {
			if got := ConvValue(value); got != nil {
				t.Errorf("want nil, got %v", build.FormatString(got))
			}
		})
	}
}

func TestFormatModule(t *testing.T) {
	mod := &starlarkstruct.Module{
		Name: "m",
		Members: starlark.StringDict{
			"name":  starlark.String("data"),
			"count": starlark.MakeInt(3),
			"f":     starlark.NewBuiltin("f", nil),
		},
	}

	got := FormatModule(mod)

	for _, want := range []string{
		`count = 3`,
		`# f: builtin_function_or_method`,
		`name = "data"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("want %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "count") > strings.Index(got, "name") {
		t.Errorf("members should be sorted by name:\n%s", got)
	}
}
