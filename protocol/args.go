package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"pinctl/core"
)

// Argument tags. Arguments keep their kind on the wire so the receiving
// dispatcher can reject non-numeric ones exactly as a local caller would.
const (
	TagInt    = 0
	TagFloat  = 1
	TagString = 2
)

var ErrUnknownTag = errors.New("unknown argument tag")

// EncodeArg appends one tagged argument. Integers that fit in 32 bits travel
// as VLQ ints, other numbers as IEEE-754 doubles, and everything else as its
// %v text.
func EncodeArg(output OutputBuffer, v any) {
	switch n := v.(type) {
	case int:
		encodeInt64(output, int64(n))
	case int8:
		encodeInt64(output, int64(n))
	case int16:
		encodeInt64(output, int64(n))
	case int32:
		encodeInt64(output, int64(n))
	case int64:
		encodeInt64(output, n)
	case core.Mode:
		encodeInt64(output, int64(n))
	case core.Level:
		encodeInt64(output, int64(n))
	case uint:
		encodeUint64(output, uint64(n))
	case uint8:
		encodeInt64(output, int64(n))
	case uint16:
		encodeInt64(output, int64(n))
	case uint32:
		encodeInt64(output, int64(n))
	case uint64:
		encodeUint64(output, n)
	case float32:
		encodeFloat(output, float64(n))
	case float64:
		encodeFloat(output, n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			encodeInt64(output, i)
		} else if f, err := n.Float64(); err == nil {
			encodeFloat(output, f)
		} else {
			encodeString(output, n.String())
		}
	case string:
		encodeString(output, n)
	default:
		encodeString(output, fmt.Sprint(v))
	}
}

func encodeInt64(output OutputBuffer, v int64) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		encodeFloat(output, float64(v))
		return
	}
	EncodeVLQUint(output, TagInt)
	EncodeVLQInt(output, int32(v))
}

func encodeUint64(output OutputBuffer, v uint64) {
	if v > math.MaxInt32 {
		encodeFloat(output, float64(v))
		return
	}
	encodeInt64(output, int64(v))
}

func encodeFloat(output OutputBuffer, f float64) {
	bits := math.Float64bits(f)
	EncodeVLQUint(output, TagFloat)
	EncodeVLQUint(output, uint32(bits>>32))
	EncodeVLQUint(output, uint32(bits))
}

func encodeString(output OutputBuffer, s string) {
	EncodeVLQUint(output, TagString)
	EncodeVLQString(output, s)
}

// DecodeArg consumes one tagged argument: an int, a float64 or a string
func DecodeArg(data *[]byte) (any, error) {
	tag, err := DecodeVLQUint(data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagInt:
		v, err := DecodeVLQInt(data)
		if err != nil {
			return nil, err
		}
		return int(v), nil
	case TagFloat:
		hi, err := DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		lo, err := DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(uint64(hi)<<32 | uint64(lo)), nil
	case TagString:
		return DecodeVLQString(data)
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownTag, tag)
	}
}
