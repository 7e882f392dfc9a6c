package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/macropower/zoorunner/pkg/rule"
)

// DefaultFileName is the config file looked up when no path is given.
const DefaultFileName = "wcag_zoo_runner.ini"

// SectionRunner holds the runner's key = value settings.
const SectionRunner = "runner"

// ErrInvalidConfig indicates a config file that could not be parsed.
var ErrInvalidConfig = errors.New("invalid config")

var ruleSections = []string{rule.SectionInclude, rule.SectionExclude, rule.SectionExcludeIf}

// patternMark is prefixed to rule lines that start with "[", so that a
// character class such as "[a-z]+\.txt" is not read as a section header.
const patternMark = "\x00"

var sectionHeader = regexp.MustCompile(`^\[([^\[\]]+)\]\s*(?:[#;].*)?$`)

// Runner holds the [runner] section. Empty fields are unset.
type Runner struct {
	// BaseURL is joined onto relative URLs in the plan.
	BaseURL string `ini:"base-url" json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	// Checker is the command run once per URL.
	Checker string `ini:"checker" json:"checker,omitempty" yaml:"checker,omitempty"`
	// RoutesFile lists the application's routes, one per line.
	RoutesFile string `ini:"routes-file" json:"routesFile,omitempty" yaml:"routesFile,omitempty"`
	// RoutesCommand prints the application's routes, one per line.
	RoutesCommand string `ini:"routes-command" json:"routesCommand,omitempty" yaml:"routesCommand,omitempty"`
	// Level is substituted for {level} in the checker command.
	Level string `ini:"level" json:"level,omitempty" yaml:"level,omitempty"`
	// StaticPath is substituted for {static-path} in the checker command.
	StaticPath string `ini:"static-path" json:"staticPath,omitempty" yaml:"staticPath,omitempty"`
}

// Config is a loaded config file.
type Config struct {
	// Path is the file the config was loaded from.
	Path   string
	Rules  rule.Set
	Runner Runner
	// Found is false when the file did not exist.
	Found bool
}

// Load reads the config file at path. A missing file is not an error: the
// returned config has an empty rule set and Found set to false.
func Load(path string) (*Config, error) {
	data, err := ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("config file not found, all routes will be tested",
			slog.String("path", path),
		)

		return &Config{Path: path}, nil
	}
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Path = path

	return cfg, nil
}

// Parse parses config file content.
func Parse(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		UnparseableSections:      ruleSections,
		SpaceBeforeInlineComment: true,
	}, markPatterns(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w (a rule line of the form \"[...]\" is a section header, write it as \"\\[...]\")",
			ErrInvalidConfig, err)
	}

	cfg := &Config{
		Found: true,
		Rules: rule.Set{
			Include:   sectionLines(f, rule.SectionInclude),
			Exclude:   sectionLines(f, rule.SectionExclude),
			ExcludeIf: sectionLines(f, rule.SectionExcludeIf),
		},
	}

	if sec, err := f.GetSection(SectionRunner); err == nil {
		err = sec.MapTo(&cfg.Runner)
		if err != nil {
			return nil, fmt.Errorf("%w: [%s]: %w", ErrInvalidConfig, SectionRunner, err)
		}
	}

	return cfg, nil
}

// markPatterns prefixes rule lines that start with "[" but are not a
// complete section header with [patternMark].
func markPatterns(data []byte) []byte {
	var (
		b       bytes.Buffer
		inRules bool
	)

	b.Grow(len(data))

	for line := range strings.Lines(string(data)) {
		trimmed := strings.TrimSpace(line)

		if m := sectionHeader.FindStringSubmatch(trimmed); m != nil {
			inRules = slices.Contains(ruleSections, strings.TrimSpace(m[1]))
		} else if inRules && strings.HasPrefix(trimmed, "[") {
			b.WriteString(patternMark)
		}

		b.WriteString(line)
	}

	return b.Bytes()
}

// sectionLines returns the non-blank, non-comment lines of a raw section.
func sectionLines(f *ini.File, name string) []string {
	sec, err := f.GetSection(name)
	if err != nil {
		return nil
	}

	var lines []string
	for line := range strings.SplitSeq(sec.Body(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), patternMark))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}
