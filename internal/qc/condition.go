package qc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/compare-methods/alphadiv/pkg/types"
)

// undefinedLiteral is the right-hand side that matches an undefined index.
const undefinedLiteral = "undefined"

// condition is a parsed "field operator value" expression.
//
// Supported expressions:
//
//	richness < 10
//	berger_parker > 0.9
//	simpson <= 0.2
//	shannon == undefined
//	shannon != undefined
type condition struct {
	column    string
	op        string
	undefined bool
	threshold float64
}

// parseCondition compiles cond. Unlike evaluation, parsing is strict: an
// unknown field, operator or value is an error.
func parseCondition(cond string) (condition, error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return condition{}, fmt.Errorf("want \"field op value\", got %q", cond)
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	column, ok := fieldColumn(field)
	if !ok {
		return condition{}, fmt.Errorf("unknown field %q", field)
	}

	if rhs == undefinedLiteral {
		if op != "==" && op != "!=" {
			return condition{}, fmt.Errorf("operator %q cannot compare with undefined", op)
		}
		return condition{column: column, op: op, undefined: true}, nil
	}

	switch op {
	case ">", ">=", "<", "<=", "==", "!=":
	default:
		return condition{}, fmt.Errorf("unknown operator %q", op)
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return condition{}, fmt.Errorf("threshold %q: %w", rhs, err)
	}
	return condition{column: column, op: op, threshold: threshold}, nil
}

// eval reports whether m matches the condition, with the index it looked at.
// A numeric comparison against an undefined index never matches.
func (c condition) eval(m types.DiversityMetrics) (bool, types.Index) {
	idx, _ := m.Index(c.column)
	if c.undefined {
		if c.op == "==" {
			return !idx.IsDefined(), idx
		}
		return idx.IsDefined(), idx
	}
	v, ok := idx.Value()
	if !ok {
		return false, idx
	}
	return compareFloat(v, c.op, c.threshold), idx
}

// fieldColumn maps a rule field name to its metrics table column.
func fieldColumn(field string) (string, bool) {
	switch field {
	case "richness":
		return types.ColumnRichness, true
	case "berger_parker":
		return types.ColumnBergerParker, true
	case "simpson":
		return types.ColumnSimpson, true
	case "shannon":
		return types.ColumnShannon, true
	default:
		return "", false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
