package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/vm"
)

// Evaluator evaluates the expression inside a ${...} marker against the
// bindings of a snapshot and returns its textual result.
//
// Expressions are trusted input. The default [ExprEvaluator] exposes the full
// expr-lang grammar; substitute a restricted implementation where the source
// cannot be trusted.
type Evaluator interface {
	Evaluate(expression string, bindings Snapshot) (string, error)
}

// EvaluatorFunc adapts a plain function to the [Evaluator] interface.
type EvaluatorFunc func(expression string, bindings Snapshot) (string, error)

// Evaluate calls f(expression, bindings).
func (f EvaluatorFunc) Evaluate(
	expression string,
	bindings Snapshot,
) (string, error) {
	return f(expression, bindings)
}

// ExprEvaluator evaluates expressions with expr-lang.
//
// Snapshot bindings are exposed as string variables and shadow the builtins
// (env, mung). Compiled programs are cached by expression text and the set of
// bound names, so an ExprEvaluator should be reused across snapshots.
// It is safe for concurrent use.
type ExprEvaluator struct {
	processEnv map[string]string

	mutex    sync.Mutex
	programs map[string]*vm.Program
}

// NewExprEvaluator returns an evaluator whose env() builtin reads from
// processEnv, formatted as []string{"KEY=VALUE", ...}. If processEnv is nil,
// os.Environ() is used.
func NewExprEvaluator(processEnv []string) *ExprEvaluator {
	return &ExprEvaluator{
		processEnv: buildProcessEnvMap(processEnv),
		programs:   make(map[string]*vm.Program),
	}
}

// Evaluate implements [Evaluator].
//
// An empty expression evaluates to the empty string. A reference to a name
// that is neither bound nor built in fails with [ErrUnknownVariable]; any
// other compile or runtime failure is reported as [ErrExpressionEvaluation].
func (e *ExprEvaluator) Evaluate(
	expression string,
	bindings Snapshot,
) (string, error) {
	if strings.TrimSpace(expression) == "" {
		return "", nil
	}

	env := e.environment(bindings)

	program, err := e.compile(expression, env)
	if err != nil {
		return "", WrapError(err).
			With(slog.String("snapshot", bindings.String()))
	}

	result, err := vm.Run(program, env)
	if err != nil {
		return "", ErrExpressionEvaluation.Wrap(err).
			With(
				slog.String("expression", expression),
				slog.String("snapshot", bindings.String()),
			)
	}

	return FormatResult(result), nil
}

// environment layers the snapshot bindings over the builtins.
func (e *ExprEvaluator) environment(bindings Snapshot) map[string]any {
	env := builtinEnv(e.processEnv)

	for name, value := range bindings.All() {
		env[name] = value
	}

	return env
}

// compile returns the cached program for expression under env, compiling it
// on first use.
func (e *ExprEvaluator) compile(
	expression string,
	env map[string]any,
) (*vm.Program, error) {
	key := cacheKey(expression, env)

	e.mutex.Lock()
	program, ok := e.programs[key]
	e.mutex.Unlock()

	if ok {
		return program, nil
	}

	names := &nameChecker{
		env:      env,
		declared: make(map[string]struct{}),
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.Patch(names))

	// Report unknown names ahead of the compiler's own diagnostic.
	if name, unknown := names.firstUnknown(); unknown {
		return nil, ErrUnknownVariable.
			With(
				slog.String("name", name),
				slog.String("expression", expression),
			)
	}

	if err != nil {
		return nil, ErrExpressionEvaluation.Wrap(err).
			With(slog.String("expression", expression))
	}

	if name, bare := names.firstBareBuiltin(); bare {
		return nil, ErrExpressionEvaluation.
			With(
				slog.String("builtin", name),
				slog.String("expression", expression),
			)
	}

	e.mutex.Lock()
	e.programs[key] = program
	e.mutex.Unlock()

	return program, nil
}

// cacheKey identifies a program by its source and the names it may reference.
func cacheKey(expression string, env map[string]any) string {
	return expression + "\x00" + strings.Join(slices.Sorted(maps.Keys(env)), ",")
}

// nameChecker is an [ast.Visitor] that records every identifier not found in
// the environment.
//
// Names introduced by let declarations within the expression are excluded
// after the walk, since the walk visits children before their declarator.
type nameChecker struct {
	env      map[string]any
	declared map[string]struct{}
	unknown  []string
	builtins []string // expr builtins referenced as values, not called
}

// Visit implements ast.Visitor for nameChecker.
func (c *nameChecker) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if _, ok := c.env[n.Value]; ok {
			return
		}

		// A called builtin parses as a BuiltinNode, so an identifier naming
		// one is a reference to the function itself.
		if _, ok := builtin.Index[n.Value]; ok {
			c.builtins = append(c.builtins, n.Value)

			return
		}

		if n.Value == "$env" {
			return
		}

		c.unknown = append(c.unknown, n.Value)

	case *ast.VariableDeclaratorNode:
		c.declared[n.Name] = struct{}{}
	}
}

// firstUnknown returns the first recorded identifier that was not declared
// within the expression.
func (c *nameChecker) firstUnknown() (string, bool) {
	for _, name := range c.unknown {
		if _, ok := c.declared[name]; !ok {
			return name, true
		}
	}

	return "", false
}

// firstBareBuiltin returns the first builtin referenced without a call that
// was not shadowed by a let declaration.
func (c *nameChecker) firstBareBuiltin() (string, bool) {
	for _, name := range c.builtins {
		if _, ok := c.declared[name]; !ok {
			return name, true
		}
	}

	return "", false
}

// FormatResult converts an evaluation result to the text substituted for its
// marker.
func FormatResult(result any) string {
	switch val := result.(type) {
	case nil:
		return ""

	case string:
		return val

	case bool:
		return strconv.FormatBool(val)

	case int:
		return strconv.Itoa(val)

	case int64:
		return strconv.FormatInt(val, 10)

	case uint64:
		return strconv.FormatUint(val, 10)

	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)

	case fmt.Stringer:
		return val.String()

	default:
		return fmt.Sprint(val)
	}
}
