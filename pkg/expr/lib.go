package expr

import (
	"path"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/zoorunner/pkg/route"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),

		// `pathBase` returns the last element of the path.
		// Example: pathBase(route) == "feed.xml".
		cel.Function("pathBase",
			cel.Overload("path_base", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathBase", path.Base)),
			),
		),

		// `pathDir` returns all but the last element of the path.
		// Example: pathDir(route) == "/blog".
		cel.Function("pathDir",
			cel.Overload("path_dir", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathDir", path.Dir)),
			),
		),

		// `pathExt` returns the file extension of the path.
		// Example: pathExt(route) in [".xml", ".txt", ".json"].
		cel.Function("pathExt",
			cel.Overload("path_ext", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("pathExt", path.Ext)),
			),
		),

		// `hasParams` reports whether a route contains placeholders.
		// Example: hasParams(route) && !route.startsWith("/products/").
		cel.Function("hasParams",
			cel.Overload("has_params", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					s, ok := v.(types.String)
					if !ok {
						return types.NewErr("hasParams: invalid string value")
					}

					return types.Bool(route.HasParams(string(s)))
				}),
			),
		),

		// `category` returns "page", "template" or "internal".
		// Example: category(route) == "internal".
		cel.Function("category",
			cel.Overload("route_category", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(stringFunc("category", func(s string) string {
					return route.Categorize(s).String()
				})),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

func stringFunc(name string, fn func(string) string) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		s, ok := v.(types.String)
		if !ok {
			return types.NewErr("%s: invalid string value", name)
		}

		return types.String(fn(string(s)))
	}
}
