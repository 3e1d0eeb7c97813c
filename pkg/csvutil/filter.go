package csvutil

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
)

// Filter keeps the rows for which expression evaluates to true.
//
// Each column is a variable in the expression; values that parse as
// numbers are float64, everything else stays a string. The raw strings
// are also available as row["column name"] for names that are not
// identifiers. Unknown variables evaluate to nil.
func Filter(rows []Row, expression string) ([]Row, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}

	out := make([]Row, 0, len(rows))
	for i, row := range rows {
		result, err := expr.Run(program, rowEnv(row))
		if err != nil {
			return nil, fmt.Errorf("eval %q on row %d: %w", expression, i+1, err)
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("eval %q on row %d: result is %T, not bool", expression, i+1, result)
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

func rowEnv(row Row) map[string]any {
	env := make(map[string]any, len(row)+1)
	raw := make(map[string]any, len(row))
	for k, v := range row {
		raw[k] = v
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			env[k] = f
		} else {
			env[k] = v
		}
	}
	env["row"] = raw
	return env
}
