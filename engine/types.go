package engine

import "fmt"

// RowID identifies a row version inside one table.
type RowID uint32

// ValueType identifies the type of a column value.
type ValueType int

const (
	// TypeInvalid is the zero value and never describes a real column.
	TypeInvalid ValueType = iota
	// TypeInt64 is a signed 64-bit integer column.
	TypeInt64
	// TypeFloat64 is a 64-bit float column.
	TypeFloat64
	// TypeString is a string column.
	TypeString
	// TypeBool is a boolean column.
	TypeBool
)

// String returns the type name.
func (t ValueType) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("invalid(%d)", int(t))
	}
}

// Datum is a single column value. The concrete type must match the
// column's ValueType: int64, float64, string or bool.
type Datum any

// Column describes one table column.
type Column struct {
	Name string
	Type ValueType
}

// Tuple is one visible row produced by a scan.
type Tuple struct {
	Row    RowID
	Values []Datum
}

// checkDatum validates that v is the in-memory representation for t.
func checkDatum(t ValueType, v Datum) error {
	ok := false
	switch t {
	case TypeInt64:
		_, ok = v.(int64)
	case TypeFloat64:
		_, ok = v.(float64)
	case TypeString:
		_, ok = v.(string)
	case TypeBool:
		_, ok = v.(bool)
	}
	if !ok {
		return fmt.Errorf("engine: datum %v (%T) is not a valid %s", v, v, t)
	}
	return nil
}

// compareDatum orders two datums of the same type.
// Bools order false before true.
func compareDatum(t ValueType, a, b Datum) (int, error) {
	switch t {
	case TypeInt64:
		av, aok := a.(int64)
		bv, bok := b.(int64)
		if aok && bok {
			return cmpOrdered(av, bv), nil
		}
	case TypeFloat64:
		av, aok := a.(float64)
		bv, bok := b.(float64)
		if aok && bok {
			return cmpOrdered(av, bv), nil
		}
	case TypeString:
		av, aok := a.(string)
		bv, bok := b.(string)
		if aok && bok {
			return cmpOrdered(av, bv), nil
		}
	case TypeBool:
		av, aok := a.(bool)
		bv, bok := b.(bool)
		if aok && bok {
			return cmpOrdered(boolInt(av), boolInt(bv)), nil
		}
	}
	return 0, fmt.Errorf("engine: cannot compare %T and %T as %s", a, b, t)
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// datumKey returns the posting-list key for a value.
func datumKey(t ValueType, v Datum) string {
	return fmt.Sprintf("%d:%v", int(t), v)
}
