package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"meanrev/pkg/models"
)

// Rule is a named boolean CEL expression over the `message` variable.
type Rule struct {
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
}

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("message", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateExpression(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("schema expression must return bool, got %v", ast.OutputType())
	}

	return nil
}

type compiledRule struct {
	name    string
	program cel.Program
}

// Checker holds a compiled rule set and implements the boolean
// schema-check collaborator the validator delegates to. Compilation
// happens once at construction; per-message evaluation is allocation
// light and safe for concurrent use.
type Checker struct {
	rules []compiledRule
}

func (e *Evaluator) Compile(rules []Rule) (*Checker, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, rule := range rules {
		ast, issues := e.env.Compile(rule.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile schema rule %q: %w", rule.Name, issues.Err())
		}

		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("schema rule %q must return bool, got %v", rule.Name, ast.OutputType())
		}

		program, err := e.env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to create program for schema rule %q: %w", rule.Name, err)
		}

		compiled = append(compiled, compiledRule{name: rule.Name, program: program})
	}

	return &Checker{rules: compiled}, nil
}

// CheckSchema reports whether the message satisfies every rule.
func (c *Checker) CheckSchema(ctx context.Context, msg models.RawMessage) (bool, error) {
	vars := map[string]interface{}{
		"message": map[string]interface{}(msg),
	}

	for _, rule := range c.rules {
		result, _, err := rule.program.ContextEval(ctx, vars)
		if err != nil {
			return false, fmt.Errorf("failed to evaluate schema rule %q: %w", rule.name, err)
		}

		boolVal, ok := result.Value().(bool)
		if !ok {
			return false, fmt.Errorf("schema rule %q did not return bool, got %T", rule.name, result.Value())
		}

		if !boolVal {
			return false, nil
		}
	}

	return true, nil
}
