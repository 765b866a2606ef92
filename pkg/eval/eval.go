// Package eval resolves node visibility conditions against a project
// configuration. It is a pure function over its inputs and needs no
// storage, which makes it usable standalone in tests and tooling.
package eval

import (
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/aretw0/thicket/pkg/condition"
	"github.com/aretw0/thicket/pkg/domain"
)

// VariablePrefix is prepended to every flattened configuration variable, so
// the lookup `config["hello"]` normalizes to the identifier `config_hello`.
const VariablePrefix = "config_"

// Evaluate resolves a condition against a configuration.
//
// An empty condition is always true and is short-circuited before any
// parsing happens. A non-empty condition is normalized and compiled against
// a namespace holding every flattened configuration value under the
// `config_` prefix. Any failure — parse error, type mismatch, unknown
// identifier — resolves to false rather than an error: visibility fails
// closed. (Earlier revisions of this engine failed open; see the tests.)
func Evaluate(cond string, cfg domain.Configuration) bool {
	resolved, _ := Resolve(cond, cfg)
	return resolved
}

// Resolve is Evaluate with the failure mode exposed: failed is true when the
// condition could not be evaluated at all (parse error, type mismatch,
// unknown identifier, non-boolean result), as opposed to evaluating cleanly
// to false.
func Resolve(cond string, cfg domain.Configuration) (resolved, failed bool) {
	return ResolveVars(cond, condition.Flatten(cfg.Attributes))
}

// EvaluateVars is Evaluate against an already-flattened namespace. Keys are
// expected without the `config_` prefix.
func EvaluateVars(cond string, vars map[string]any) bool {
	resolved, _ := ResolveVars(cond, vars)
	return resolved
}

// ResolveVars is Resolve against an already-flattened namespace.
func ResolveVars(cond string, vars map[string]any) (resolved, failed bool) {
	if cond == "" {
		return true, false
	}

	// Configurations that round-trip through JSON storage come back with
	// whole numbers as doubles, so int/double comparisons must work.
	opts := []cel.EnvOption{cel.CrossTypeNumericComparisons(true)}
	bindings := make(map[string]any, len(vars))
	for name, value := range vars {
		ident := VariablePrefix + name
		switch value.(type) {
		case string:
			opts = append(opts, cel.Variable(ident, cel.StringType))
		case bool:
			opts = append(opts, cel.Variable(ident, cel.BoolType))
		case int64:
			opts = append(opts, cel.Variable(ident, cel.IntType))
		case float64:
			opts = append(opts, cel.Variable(ident, cel.DoubleType))
		default:
			continue
		}
		bindings[ident] = value
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		slog.Debug("condition environment construction failed", "err", err)
		return false, true
	}

	ast, iss := env.Compile(condition.Normalize(cond))
	if iss != nil && iss.Err() != nil {
		slog.Debug("condition failed to compile", "condition", cond, "err", iss.Err())
		return false, true
	}

	prg, err := env.Program(ast)
	if err != nil {
		slog.Debug("condition program construction failed", "condition", cond, "err", err)
		return false, true
	}

	out, _, err := prg.Eval(bindings)
	if err != nil {
		slog.Debug("condition evaluation failed", "condition", cond, "err", err)
		return false, true
	}

	result, ok := out.Value().(bool)
	if !ok {
		slog.Debug("condition did not evaluate to a boolean", "condition", cond)
		return false, true
	}
	return result, false
}
