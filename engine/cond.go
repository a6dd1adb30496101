package engine

import "fmt"

// Op is a comparison operator usable in scan qualifiers and index
// conditions.
type Op int

const (
	// OpEq matches values equal to the condition value.
	OpEq Op = iota
	// OpNe matches values not equal to the condition value.
	OpNe
	// OpLt matches values less than the condition value.
	OpLt
	// OpLe matches values less than or equal to the condition value.
	OpLe
	// OpGt matches values greater than the condition value.
	OpGt
	// OpGe matches values greater than or equal to the condition value.
	OpGe
)

// String returns the SQL-ish operator spelling.
func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// Cond is a single column-operator-value qualifier. A slice of Conds is
// interpreted as a conjunction.
type Cond struct {
	Column string
	Op     Op
	Value  Datum
}

// String renders the condition for plan visualization.
func (c Cond) String() string {
	if s, ok := c.Value.(string); ok {
		return fmt.Sprintf("%s %s '%s'", c.Column, c.Op, s)
	}
	return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Value)
}

// matches evaluates op against the three-way comparison result.
func (op Op) matches(cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	default:
		return false
	}
}

// EvalConds evaluates a conjunction of conditions against a tuple laid
// out per the table descriptor. Unknown columns evaluate to an error.
func EvalConds(d *TableDescr, t Tuple, conds []Cond) (bool, error) {
	for _, c := range conds {
		pos, ok := d.ColumnIndex(c.Column)
		if !ok {
			return false, fmt.Errorf("engine: unknown column %q in qualifier", c.Column)
		}
		cmp, err := compareDatum(d.Columns[pos].Type, t.Values[pos], c.Value)
		if err != nil {
			return false, err
		}
		if !c.Op.matches(cmp) {
			return false, nil
		}
	}
	return true, nil
}
