package rule

import (
	"errors"
	"fmt"
)

// Section names, as used in rule files.
const (
	SectionInclude   = "include"
	SectionExclude   = "exclude"
	SectionExcludeIf = "exclude-if"
)

// ErrInvalidRule indicates a rule that could not be compiled.
var ErrInvalidRule = errors.New("invalid rule")

// Verdict is the outcome for one route.
type Verdict string

const (
	Test Verdict = "test"
	Skip Verdict = "skip"
)

// Reason names the rule stage that produced a [Decision].
type Reason string

const (
	ReasonInclude   Reason = SectionInclude
	ReasonExclude   Reason = SectionExclude
	ReasonExcludeIf Reason = SectionExcludeIf
	ReasonDefault   Reason = "default"
)

// Set is an ordered rule set.
type Set struct {
	// Include holds literal paths or example URLs.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	// Exclude holds regular expressions.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	// ExcludeIf holds boolean CEL expressions.
	ExcludeIf []string `json:"excludeIf,omitempty" yaml:"excludeIf,omitempty"`
}

// Empty reports whether the set has no rules at all.
func (s Set) Empty() bool {
	return len(s.Include) == 0 && len(s.Exclude) == 0 && len(s.ExcludeIf) == 0
}

// Decision is the deterministic result of matching one route.
type Decision struct {
	// Verdict is [Test] or [Skip].
	Verdict Verdict `json:"verdict" yaml:"verdict"`
	// Reason is the stage that decided.
	Reason Reason `json:"reason" yaml:"reason"`
	// Rule is the text of the first matching rule, empty for [ReasonDefault].
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`
	// RuleIndex is the index of Rule within its section, -1 when no rule matched.
	RuleIndex int `json:"ruleIndex" yaml:"ruleIndex"`
	// Includes lists every include entry that matched, in rule order.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`
}

// InvalidRuleError describes one rule that failed to compile.
type InvalidRuleError struct {
	Err     error
	Section string
	Pattern string
	Index   int
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("%s: [%s] #%d %q: %v", ErrInvalidRule, e.Section, e.Index+1, e.Pattern, e.Err)
}

func (e *InvalidRuleError) Unwrap() []error {
	return []error{ErrInvalidRule, e.Err}
}
