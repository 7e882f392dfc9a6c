package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/macropower/zoorunner/pkg/route"
)

// ErrNotBoolean is returned for expressions that do not evaluate to a bool.
var ErrNotBoolean = errors.New("expression must return a bool")

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env] with the
// route variables declared.
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment].
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts,
		cel.Variable("route", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("params", cel.ListType(cel.StringType)),
		cel.Variable("segments", cel.ListType(cel.StringType)),
		cel.Lib(&lib{}),
	)

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Environment{env: env}, nil
}

// Compile compiles a boolean CEL expression into a program.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}

// Vars returns the activation for evaluating an expression against r.
func Vars(r route.Route) map[string]any {
	params := route.Params(r.Path)
	if params == nil {
		params = []string{}
	}

	segments := route.Segments(r.Path)
	if segments == nil {
		segments = []string{}
	}

	return map[string]any{
		"route":    r.Path,
		"name":     r.Name,
		"params":   params,
		"segments": segments,
	}
}

// Match evaluates a compiled boolean program against r. Evaluation errors
// and non-boolean results are reported as errors.
func Match(program cel.Program, r route.Route) (bool, error) {
	out, _, err := program.Eval(Vars(r))
	if err != nil {
		return false, fmt.Errorf("evaluate: %w", err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, ErrNotBoolean
	}

	return b, nil
}
