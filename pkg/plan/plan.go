// Package plan turns per-route decisions into the ordered list of concrete
// URLs to check.
package plan

import (
	"log/slog"
	"strings"

	"github.com/macropower/zoorunner/pkg/route"
	"github.com/macropower/zoorunner/pkg/rule"
)

// Entry is the decision for one route.
type Entry struct {
	Route    string        `json:"route"          yaml:"route"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Decision rule.Decision `json:"decision"       yaml:"decision"`
}

// Plan is the result of filtering a route list through a rule set.
type Plan struct {
	// BaseURL is the prefix joined onto relative URLs, if any.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	// Entries holds one decision per route, in route order.
	Entries []Entry `json:"entries" yaml:"entries"`
	// URLs are the concrete URLs to check, deduplicated, in order.
	URLs []string `json:"urls" yaml:"urls"`
	// Unresolved are routes tested by default that have placeholders and no
	// include entry giving an example URL.
	Unresolved []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	// Orphans are include entries that matched no route. They are still
	// part of URLs.
	Orphans []rule.Orphan `json:"orphans,omitempty" yaml:"orphans,omitempty"`
	// Uncovered are routes matched by no rule.
	Uncovered []string `json:"uncovered,omitempty" yaml:"uncovered,omitempty"`
}

// Option configures [Build].
type Option func(*Plan)

// WithBaseURL joins relative URLs onto base.
func WithBaseURL(base string) Option {
	return func(p *Plan) {
		p.BaseURL = base
	}
}

// Build decides every route and collects the URLs to check.
//
// URLs are ordered as follows: every include entry in rule order, then every
// route tested by default that can be requested as-is, in route order.
// Skipped routes contribute nothing.
func Build(routes []route.Route, m *rule.Matcher, opts ...Option) *Plan {
	p := &Plan{
		Entries: make([]Entry, 0, len(routes)),
		URLs:    []string{},
	}
	for _, opt := range opts {
		opt(p)
	}

	seen := map[string]struct{}{}
	add := func(u string) {
		u = JoinURL(p.BaseURL, u)
		if _, ok := seen[u]; ok {
			return
		}

		seen[u] = struct{}{}
		p.URLs = append(p.URLs, u)
	}

	for _, inc := range m.Includes() {
		add(inc)
	}

	for _, r := range routes {
		d := m.Decide(r)
		p.Entries = append(p.Entries, Entry{Route: r.Path, Name: r.Name, Decision: d})

		if d.Reason != rule.ReasonDefault {
			continue
		}

		if route.HasParams(r.Path) {
			slog.Warn("route has placeholders and no example url, add one to [include]",
				slog.String("route", r.Path),
			)
			p.Unresolved = append(p.Unresolved, r.Path)

			continue
		}

		add(r.Path)
	}

	cov := m.Coverage(routes)
	p.Orphans = cov.Orphans
	p.Uncovered = cov.Uncovered

	for _, o := range p.Orphans {
		slog.Warn("include entry matches no route",
			slog.String("entry", o.Entry),
			slog.Any("suggestions", o.Suggestions),
		)
	}

	return p
}

// Tested returns the number of routes with a [rule.Test] verdict.
func (p *Plan) Tested() int {
	n := 0
	for _, e := range p.Entries {
		if e.Decision.Verdict == rule.Test {
			n++
		}
	}

	return n
}

// Skipped returns the number of routes with a [rule.Skip] verdict.
func (p *Plan) Skipped() int {
	return len(p.Entries) - p.Tested()
}

// JoinURL joins path onto base. Absolute URLs and an empty base leave path
// unchanged.
func JoinURL(base, path string) string {
	if base == "" || strings.Contains(path, "://") {
		return path
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
