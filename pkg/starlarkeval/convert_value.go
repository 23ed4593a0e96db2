/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package starlarkeval

import (
	"strconv"

	"github.com/bazelbuild/buildtools/build"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ConvValue converts a starlark value to a buildtools expression.  Values
// with no literal form (functions, builtins, modules) yield nil.
func ConvValue(value starlark.Value) build.Expr {
	switch t := value.(type) {
	case starlark.NoneType:
		return &build.Ident{Name: "None"}
	case starlark.Bool:
		if t {
			return &build.Ident{Name: "True"}
		}
		return &build.Ident{Name: "False"}
	case starlark.Int:
		if val, ok := t.Int64(); ok {
			return &build.LiteralExpr{
				Token: strconv.FormatInt(val, 10),
			}
		}
		return &build.LiteralExpr{Token: t.String()}
	case starlark.Float:
		return &build.LiteralExpr{Token: t.String()}
	case starlark.String:
		return &build.StringExpr{
			Value: t.GoString(),
		}
	case *starlark.List:
		list := &build.ListExpr{}
		for i := 0; i < t.Len(); i++ {
			elem := ConvValue(t.Index(i))
			if elem == nil {
				return nil
			}
			list.List = append(list.List, elem)
		}
		return list
	case starlark.Tuple:
		tuple := &build.TupleExpr{ForceCompact: true}
		for _, v := range t {
			elem := ConvValue(v)
			if elem == nil {
				return nil
			}
			tuple.List = append(tuple.List, elem)
		}
		return tuple
	case *starlark.Dict:
		dict := &build.DictExpr{}
		for _, item := range t.Items() {
			key := ConvValue(item[0])
			val := ConvValue(item[1])
			if key == nil || val == nil {
				return nil
			}
			dict.List = append(dict.List, &build.KeyValueExpr{Key: key, Value: val})
		}
		return dict
	}
	return nil
}

// FormatModule renders the members of a module as starlark assignments,
// sorted by name.  Members with no literal form are listed as comments.
func FormatModule(mod *starlarkstruct.Module) string {
	f := &build.File{Type: build.TypeDefault}
	for _, name := range mod.Members.Keys() {
		value := mod.Members[name]
		expr := ConvValue(value)
		if expr == nil {
			f.Stmt = append(f.Stmt, &build.CommentBlock{
				Comments: build.Comments{
					Before: []build.Comment{{Token: "# " + name + ": " + value.Type()}},
				},
			})
			continue
		}
		f.Stmt = append(f.Stmt, &build.AssignExpr{
			LHS: &build.Ident{Name: name},
			Op:  "=",
			RHS: expr,
		})
	}
	return string(build.Format(f))
}
