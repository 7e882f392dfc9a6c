package execs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrCommandExecution is returned when command execution fails.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")
)

// Result represents the result of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Command is one external program invocation.
type Command struct {
	// Command is the program to execute.
	Command string `json:"command" yaml:"command"`
	// Args contains the command line arguments.
	Args []string `json:"args,omitempty" yaml:"args,flow,omitempty"`
	// Env contains extra KEY=VALUE pairs added to the caller's environment.
	Env []string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Parse splits a shell-style command line into a [Command]. Leading
// KEY=VALUE words become environment variables, and $VAR references are
// expanded from the caller's environment.
func Parse(line string) (Command, error) {
	p := shellwords.NewParser()
	p.ParseEnv = true

	words, err := p.Parse(line)
	if err != nil {
		return Command{}, fmt.Errorf("parse command %q: %w", line, err)
	}

	var env []string
	for len(words) > 0 && isEnvAssignment(words[0]) {
		env = append(env, words[0])
		words = words[1:]
	}

	if len(words) == 0 {
		return Command{}, ErrEmptyCommand
	}

	return Command{
		Command: words[0],
		Args:    words[1:],
		Env:     env,
	}, nil
}

// Expand returns a copy of the command with every `{key}` in its arguments
// replaced by vars[key]. Unknown keys are left untouched.
func (c Command) Expand(vars map[string]string) Command {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}

	r := strings.NewReplacer(pairs...)

	out := c
	out.Args = make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		out.Args = append(out.Args, r.Replace(arg))
	}

	return out
}

// Mentions reports whether any argument contains `{key}`.
func (c Command) Mentions(key string) bool {
	for _, arg := range c.Args {
		if strings.Contains(arg, "{"+key+"}") {
			return true
		}
	}

	return false
}

// WithArgs returns a copy of the command with extra arguments appended.
func (c Command) WithArgs(args ...string) Command {
	out := c
	out.Args = append(append([]string{}, c.Args...), args...)

	return out
}

// GetEnv returns the caller's environment followed by the command's own
// variables, which take precedence.
func (c Command) GetEnv() []string {
	return append(os.Environ(), c.Env...)
}

func (c Command) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", c.Command, strings.Join(c.Args, " ")))
}

func isEnvAssignment(word string) bool {
	name, _, ok := strings.Cut(word, "=")
	if !ok || name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
