package pipeline

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"go-data-processor/internal/model"
)

// compile builds an expression program evaluated against a record's field
// map. Undefined variables are allowed so that references to fields a
// record happens to lack resolve to nil instead of failing compilation.
func compile(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, errors.Wrapf(model.ErrParse, "compile %q: %v", src, err)
	}
	return program, nil
}

// evalBool evaluates a condition against a record environment. Evaluation
// failures and non-boolean results count as false, which gives missing and
// mistyped fields the specified falsy behavior.
func evalBool(program *vm.Program, env map[string]interface{}) bool {
	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// eval evaluates an expression against a record environment.
func eval(program *vm.Program, env map[string]interface{}) (interface{}, error) {
	return expr.Run(program, env)
}
