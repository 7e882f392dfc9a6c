package route

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	paramExpr    = `[^/]+`
	wildcardExpr = `.*`
)

// ErrInvalidTemplate indicates a route that cannot be compiled into a [Template].
var ErrInvalidTemplate = errors.New("invalid route template")

// Route is one registered URL pattern.
type Route struct {
	// Path is the sanitised URL pattern, always starting with "/".
	Path string `json:"path" yaml:"path"`
	// Name is the optional name the registry knows the route by.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// New returns a [Route] for the raw pattern, sanitised with [Sanitize].
func New(raw string) Route {
	return Route{Path: Sanitize(raw)}
}

// Unique drops repeated paths, keeping the first occurrence.
func Unique(routes []Route) []Route {
	seen := make(map[string]struct{}, len(routes))
	out := make([]Route, 0, len(routes))

	for _, r := range routes {
		if _, ok := seen[r.Path]; ok {
			continue
		}

		seen[r.Path] = struct{}{}
		out = append(out, r)
	}

	return out
}

// Sanitize strips regex route decorations and normalises the leading slash.
// Anchors left inside patterns that were joined onto a prefix are dropped.
//
//	`^products/(?P<id>\d+)/\Z`       -> `/products/(?P<id>\d+)/`
//	`^blog/^(?P<slug>[-\w]+)/$`      -> `/blog/(?P<slug>[-\w]+)/`
//	`robots\.txt$`                   -> `/robots.txt`
func Sanitize(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.ReplaceAll(p, `\Z`, "")
	p = dropAnchors(p)
	p = strings.ReplaceAll(p, `\.`, ".")

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return p
}

// dropAnchors removes `^` and `$` outside character classes and escapes.
func dropAnchors(p string) string {
	var b strings.Builder
	b.Grow(len(p))

	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]

		switch {
		case c == '\\' && i+1 < len(p):
			b.WriteByte(c)
			i++
			c = p[i]
		case inClass:
			inClass = c != ']'
		case c == '[':
			inClass = true

			// A leading `^` negates the class and a leading `]` is literal.
			b.WriteByte(c)
			if i+1 < len(p) && p[i+1] == '^' {
				i++
				b.WriteByte(p[i])
			}
			if i+1 < len(p) && p[i+1] == ']' {
				i++
				b.WriteByte(p[i])
			}

			continue
		case c == '^' || c == '$':
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// regexSyntax matches text that only occurs in regex routes: escapes,
// groups, classes, alternation, anchors, quantifiers and `{n,m}` repeats.
// A `*` right after a slash is a gin catch-all, not a quantifier.
var regexSyntax = regexp.MustCompile(`[\\()\[\]|+?^$]|[^/]\*|\{\d+(,\d*)?\}`)

// IsRegex reports whether the path is a regex route (for example, one
// declared with Django's re_path) rather than a plain path pattern.
func IsRegex(path string) bool {
	return regexSyntax.MatchString(path)
}

// HasParams reports whether the path contains placeholders, i.e. it is not a
// concrete URL that can be requested as-is.
func HasParams(path string) bool {
	return IsRegex(path) || len(Params(path)) > 0
}

// Params returns the placeholder names in the path, in order.
func Params(path string) []string {
	var names []string

	if IsRegex(path) {
		for _, m := range namedGroup.FindAllStringSubmatch(path, -1) {
			names = append(names, m[1])
		}

		return names
	}

	for _, seg := range strings.Split(path, "/") {
		for _, tok := range tokenize(seg) {
			if tok.param {
				names = append(names, tok.name)
			}
		}
	}

	return names
}

// Segments returns the non-empty path segments.
func Segments(path string) []string {
	var segs []string
	for seg := range strings.SplitSeq(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}

	return segs
}

// LiteralPrefix returns the part of the path before its first placeholder.
func LiteralPrefix(path string) string {
	end := len(path)
	if IsRegex(path) {
		end = strings.IndexAny(path, `(\[.*+?{|`)
	} else if i := strings.IndexAny(path, "<{"); i >= 0 {
		end = i
	}

	for _, marker := range []string{"/:", "/*"} {
		if i := strings.Index(path, marker); i >= 0 && i+1 < end {
			end = i + 1
		}
	}

	if end < 0 {
		return path
	}

	return path[:end]
}

var namedGroup = regexp.MustCompile(`\(\?P?<([A-Za-z_][A-Za-z0-9_]*)>`)

// Template matches concrete URLs against a route pattern.
type Template struct {
	re   *regexp.Regexp
	path string
}

// Compile builds the [Template] for a route path. Regex routes are used
// as-is; in plain routes each placeholder matches one path segment, and
// catch-all placeholders (`*name`, `{name...}`, `<path:name>`) match the rest.
func Compile(path string) (*Template, error) {
	var expr string
	if IsRegex(path) {
		expr = path
	} else {
		segs := strings.Split(path, "/")
		parts := make([]string, 0, len(segs))
		for _, seg := range segs {
			parts = append(parts, segmentExpr(seg))
		}

		expr = strings.Join(parts, "/")
	}

	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTemplate, path, err)
	}

	return &Template{re: re, path: path}, nil
}

// Match reports whether url is an instance of the template. Query strings
// and fragments are ignored.
func (t *Template) Match(url string) bool {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}

	return t.re.MatchString(url)
}

func (t *Template) String() string {
	return t.path
}

type token struct {
	text     string
	name     string
	param    bool
	catchAll bool
}

func segmentExpr(seg string) string {
	var b strings.Builder
	for _, tok := range tokenize(seg) {
		switch {
		case tok.catchAll:
			b.WriteString(wildcardExpr)
		case tok.param:
			b.WriteString(paramExpr)
		default:
			b.WriteString(regexp.QuoteMeta(tok.text))
		}
	}

	return b.String()
}

// tokenize splits one path segment into literal text and placeholders.
func tokenize(seg string) []token {
	if len(seg) > 1 && seg[0] == ':' {
		return []token{{name: seg[1:], param: true}}
	}

	if len(seg) > 1 && seg[0] == '*' {
		return []token{{name: seg[1:], param: true, catchAll: true}}
	}

	var toks []token
	for seg != "" {
		open := strings.IndexAny(seg, "<{")
		if open < 0 {
			toks = append(toks, token{text: seg})

			break
		}

		closer := ">"
		if seg[open] == '{' {
			closer = "}"
		}

		end := strings.Index(seg[open:], closer)
		if end < 0 {
			toks = append(toks, token{text: seg})

			break
		}

		if open > 0 {
			toks = append(toks, token{text: seg[:open]})
		}

		toks = append(toks, placeholder(seg[open+1:open+end]))
		seg = seg[open+end+1:]
	}

	return toks
}

func placeholder(inner string) token {
	tok := token{name: inner, param: true}

	if name, ok := strings.CutSuffix(inner, "..."); ok {
		tok.name = name
		tok.catchAll = true
	}

	// Django converters: <int:id>, <path:rest>.
	if conv, name, ok := strings.Cut(tok.name, ":"); ok {
		tok.name = name
		if conv == "path" {
			tok.catchAll = true
		}
	}

	return tok
}
