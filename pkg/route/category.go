package route

import "strings"

// Category is a coarse guess of whether a route is worth checking.
type Category int

const (
	// CategoryPage is a concrete route that can be requested as-is.
	CategoryPage Category = iota
	// CategoryTemplate is a route with placeholders; it needs an example URL.
	CategoryTemplate
	// CategoryInternal is a route under a conventional non-page prefix.
	CategoryInternal
)

// InternalPrefixes are the first path segments of routes that usually serve
// admin screens, uploads, assets or debug tooling rather than site pages.
var InternalPrefixes = []string{"admin", "media", "static", "__debug__"}

// Categorize classifies the route. Internal prefixes take precedence over
// placeholders.
func Categorize(path string) Category {
	trimmed := strings.TrimPrefix(path, "/")
	for _, prefix := range InternalPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return CategoryInternal
		}
	}

	if HasParams(path) {
		return CategoryTemplate
	}

	return CategoryPage
}

func (c Category) String() string {
	switch c {
	case CategoryPage:
		return "page"
	case CategoryTemplate:
		return "template"
	case CategoryInternal:
		return "internal"
	}

	return "unknown"
}
