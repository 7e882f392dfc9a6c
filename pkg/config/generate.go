package config

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/macropower/zoorunner/pkg/route"
	"github.com/macropower/zoorunner/pkg/rule"
)

// GenerateOption configures [Generate].
type GenerateOption func(*generateOptions)

type generateOptions struct {
	categorize bool
}

// WithCategories lays the generated config out as a starter file: concrete
// routes are included, routes with placeholders are listed as "## <route>"
// comments to be replaced with example URLs, and routes under internal
// prefixes (admin, media, static, __debug__) are excluded.
func WithCategories() GenerateOption {
	return func(o *generateOptions) {
		o.categorize = true
	}
}

// Generate writes a config listing the routes under [include], verbatim and
// in order.
func Generate(w io.Writer, routes []route.Route, opts ...GenerateOption) error {
	o := &generateOptions{}
	for _, opt := range opts {
		opt(o)
	}

	bw := bufio.NewWriter(w)

	if o.categorize {
		writeCategorized(bw, routes)
	} else {
		writeSection(bw, rule.SectionInclude)
		for _, r := range routes {
			writeLine(bw, r.Path)
		}
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func writeCategorized(w *bufio.Writer, routes []route.Route) {
	var (
		pages     []string
		templates []string
		excludes  []string
		seen      = map[string]struct{}{}
	)

	for _, r := range routes {
		switch route.Categorize(r.Path) {
		case route.CategoryInternal:
			pattern := regexp.QuoteMeta(route.LiteralPrefix(r.Path))
			if _, ok := seen[pattern]; ok {
				continue
			}

			seen[pattern] = struct{}{}
			excludes = append(excludes, pattern)

		case route.CategoryTemplate:
			templates = append(templates, r.Path)

		default:
			pages = append(pages, r.Path)
		}
	}

	writeSection(w, rule.SectionInclude)
	for _, p := range pages {
		writeLine(w, p)
	}
	for _, p := range templates {
		writeLine(w, "## "+p)
	}

	if len(excludes) > 0 {
		writeLine(w, "")
		writeSection(w, rule.SectionExclude)
		for _, p := range excludes {
			writeLine(w, p)
		}
	}
}

// bufio.Writer keeps the first error and reports it from Flush.
func writeSection(w *bufio.Writer, name string) {
	writeLine(w, "["+name+"]")
}

func writeLine(w *bufio.Writer, line string) {
	_, _ = w.WriteString(line)
	_ = w.WriteByte('\n')
}
