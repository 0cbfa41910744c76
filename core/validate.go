package core

import (
	"encoding/json"
	"math"
)

// Number converts a caller-supplied value to an integer.
//
// Every Go integer and float kind is accepted, as are Mode, Level and
// json.Number. Floats are
// truncated toward zero unless strict is set, in which case a fractional part
// is rejected. NaN, infinities and values outside the int range are never
// representable and are rejected. The bool result is false when v is not
// usable as an integer.
func Number(v any, strict bool) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return fromInt64(n)
	case Mode:
		return int(n), true
	case Level:
		return int(n), true
	case uint:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return fromInt64(int64(n))
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return fromFloat(float64(n), strict)
	case float64:
		return fromFloat(n, strict)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return fromInt64(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return fromFloat(f, strict)
	default:
		return 0, false
	}
}

func fromInt64(n int64) (int, bool) {
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}

func fromFloat(f float64, strict bool) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if strict && t != f {
		return 0, false
	}
	if t < math.MinInt || t >= -math.MinInt {
		return 0, false
	}
	return int(t), true
}

// ValidatePin checks that value is an integer within [0, count).
// count must be the driver's live pin count.
func ValidatePin(op string, value any, count int, strict bool) (int, error) {
	pin, ok := Number(value, strict)
	if !ok {
		return 0, &TypeError{Op: op, Arg: "pin", Value: value}
	}
	if pin < 0 || pin >= count {
		return 0, &RangeError{Op: op, Arg: "pin", Value: pin, Min: 0, Max: count}
	}
	return pin, nil
}

// checkArity verifies the argument count of a dispatcher operation.
func checkArity(op string, args []any, want int) error {
	if len(args) != want {
		return &ArityError{Op: op, Want: want, Got: len(args)}
	}
	return nil
}
