package rule

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/macropower/zoorunner/pkg/route"
)

const maxSuggestions = 3

// Orphan is an include entry that matched no route.
type Orphan struct {
	Entry string `json:"entry" yaml:"entry"`
	// Suggestions are routes the entry may have been meant for.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Coverage reports how completely a rule set accounts for a route list.
type Coverage struct {
	// Uncovered are routes matched by no rule, tested only by default.
	Uncovered []string `json:"uncovered,omitempty" yaml:"uncovered,omitempty"`
	// Orphans are include entries that matched no route.
	Orphans []Orphan `json:"orphans,omitempty" yaml:"orphans,omitempty"`
}

// Complete reports whether every route is covered and every include is used.
func (c Coverage) Complete() bool {
	return len(c.Uncovered) == 0 && len(c.Orphans) == 0
}

// Coverage checks the routes against the matcher's rules.
func (m *Matcher) Coverage(routes []route.Route) Coverage {
	var cov Coverage

	used := make(map[string]struct{}, len(m.includes))
	for _, r := range routes {
		d := m.Decide(r)
		if d.Reason == ReasonDefault {
			cov.Uncovered = append(cov.Uncovered, r.Path)
		}

		for _, inc := range d.Includes {
			used[inc] = struct{}{}
		}
	}

	for _, inc := range m.includes {
		if _, ok := used[inc.entry]; ok {
			continue
		}

		cov.Orphans = append(cov.Orphans, Orphan{
			Entry:       inc.entry,
			Suggestions: suggest(inc.path, routes),
		})
	}

	return cov
}

// suggest returns the routes whose literal text best fits the entry. Digits
// are dropped from the entry since they are usually parameter values.
func suggest(entry string, routes []route.Route) []string {
	if len(routes) == 0 {
		return nil
	}

	pattern := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}

		return r
	}, entry)

	skeletons := make([]string, len(routes))
	for i, r := range routes {
		skeletons[i] = skeleton(r.Path)
	}

	matches := fuzzy.Find(pattern, skeletons)

	var out []string
	for _, match := range matches {
		out = append(out, routes[match.Index].Path)
		if len(out) == maxSuggestions {
			break
		}
	}

	return out
}

// skeleton removes placeholders from a route, keeping the literal text.
func skeleton(path string) string {
	if route.IsRegex(path) {
		return route.LiteralPrefix(path)
	}

	var b strings.Builder

	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('/')
		}

		if len(route.Params(seg)) == 0 {
			b.WriteString(seg)
		}
	}

	return b.String()
}
