package rule

import (
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/macropower/zoorunner/pkg/expr"
	"github.com/macropower/zoorunner/pkg/route"
)

// Option configures a [Matcher].
type Option func(*options)

type options struct {
	onInvalid func(error)
}

// WithSkipInvalid makes [NewMatcher] drop rules that fail to compile instead
// of failing. Each dropped rule is passed to report as an [*InvalidRuleError].
func WithSkipInvalid(report func(error)) Option {
	return func(o *options) {
		o.onInvalid = report
	}
}

type include struct {
	entry string
	path  string
}

type exclude struct {
	re      *regexp.Regexp
	pattern string
	index   int
}

type excludeIf struct {
	program    cel.Program
	expression string
	index      int
}

// Matcher evaluates route decisions against a compiled [Set].
type Matcher struct {
	includes  []include
	excludes  []exclude
	excludeIf []excludeIf
}

// NewMatcher compiles the set into a [Matcher].
func NewMatcher(set Set, opts ...Option) (*Matcher, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	m := &Matcher{}

	for _, entry := range set.Include {
		entry = NormalizeInclude(entry)
		if entry == "" {
			continue
		}

		m.includes = append(m.includes, include{entry: entry, path: entryPath(entry)})
	}

	var errs []error

	for i, pattern := range set.Exclude {
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			errs = append(errs, &InvalidRuleError{Section: SectionExclude, Index: i, Pattern: pattern, Err: err})

			continue
		}

		m.excludes = append(m.excludes, exclude{re: re, pattern: pattern, index: i})
	}

	if len(set.ExcludeIf) > 0 {
		env, err := expr.NewEnvironment()
		if err != nil {
			return nil, err
		}

		for i, expression := range set.ExcludeIf {
			prg, err := env.Compile(expression)
			if err != nil {
				errs = append(errs, &InvalidRuleError{Section: SectionExcludeIf, Index: i, Pattern: expression, Err: err})

				continue
			}

			m.excludeIf = append(m.excludeIf, excludeIf{program: prg, expression: expression, index: i})
		}
	}

	if len(errs) > 0 {
		if o.onInvalid == nil {
			return nil, errors.Join(errs...)
		}

		for _, err := range errs {
			o.onInvalid(err)
		}
	}

	return m, nil
}

// MustNewMatcher is like [NewMatcher] but panics on error.
func MustNewMatcher(set Set, opts ...Option) *Matcher {
	m, err := NewMatcher(set, opts...)
	if err != nil {
		panic(err)
	}

	return m
}

// Decide returns the decision for one route.
//
// Decision policy:
//   - includes are checked first, and the first matching include wins
//   - then exclude regexes, then exclude-if expressions; first match wins
//   - if no rule matched, the route is tested
func (m *Matcher) Decide(r route.Route) Decision {
	if d, ok := m.decideInclude(r.Path); ok {
		return d
	}

	for _, ex := range m.excludes {
		if ex.re.MatchString(r.Path) {
			return Decision{Verdict: Skip, Reason: ReasonExclude, Rule: ex.pattern, RuleIndex: ex.index}
		}
	}

	for _, ex := range m.excludeIf {
		ok, err := expr.Match(ex.program, r)
		if err != nil {
			slog.Debug("exclude-if expression did not evaluate",
				slog.String("route", r.Path),
				slog.String("expression", ex.expression),
				slog.Any("err", err),
			)

			continue
		}

		if ok {
			return Decision{Verdict: Skip, Reason: ReasonExcludeIf, Rule: ex.expression, RuleIndex: ex.index}
		}
	}

	return Decision{Verdict: Test, Reason: ReasonDefault, RuleIndex: -1}
}

// Includes returns the normalised include entries, in rule order.
func (m *Matcher) Includes() []string {
	out := make([]string, 0, len(m.includes))
	for _, inc := range m.includes {
		out = append(out, inc.entry)
	}

	return out
}

func (m *Matcher) decideInclude(path string) (Decision, bool) {
	if len(m.includes) == 0 {
		return Decision{}, false
	}

	tmpl, err := route.Compile(path)
	if err != nil {
		slog.Debug("route only matches literal includes", slog.String("route", path), slog.Any("err", err))
	}

	d := Decision{RuleIndex: -1}
	for i, inc := range m.includes {
		if inc.entry != path && (tmpl == nil || !tmpl.Match(inc.path)) {
			continue
		}

		if d.RuleIndex < 0 {
			d = Decision{Verdict: Test, Reason: ReasonInclude, Rule: inc.entry, RuleIndex: i}
		}

		d.Includes = append(d.Includes, inc.entry)
	}

	return d, d.RuleIndex >= 0
}

// NormalizeInclude trims the entry and gives relative paths a leading "/".
// Absolute URLs are returned unchanged.
func NormalizeInclude(entry string) string {
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.Contains(entry, "://") || strings.HasPrefix(entry, "/") {
		return entry
	}

	return "/" + entry
}

// entryPath returns the path part of an include entry, for template matching.
func entryPath(entry string) string {
	if !strings.Contains(entry, "://") {
		return entry
	}

	u, err := url.Parse(entry)
	if err != nil || u.Path == "" {
		return "/"
	}

	return u.Path
}
