package protocol

import (
	"errors"
	"fmt"
	"math"

	"pinctl/core"
)

// RemoteError is a failure reported by the far end that has no local typed form
type RemoteError struct {
	Code core.Code
	Msg  string
}

func (e *RemoteError) Error() string { return "remote " + string(e.Code) + ": " + e.Msg }

// Unwrap exposes the code so errors.Is and core.CodeOf see it
func (e *RemoteError) Unwrap() error { return e.Code }

// ReplyFor converts a dispatcher result into a reply.
// Integer results outside the int32 range are clamped.
func ReplyFor(result any, err error) Reply {
	if err != nil {
		return replyForError(err)
	}
	r := Reply{Code: core.CodeOK}
	if v, ok := result.(int); ok {
		r.HasValue = true
		r.Value = clamp32(v)
	}
	return r
}

func replyForError(err error) Reply {
	r := Reply{Code: core.CodeOf(err)}
	var (
		arity  *core.ArityError
		typ    *core.TypeError
		rng    *core.RangeError
		notini *core.NotInitializedError
		drv    *core.DriverError
		unk    *core.UnknownCommandError
	)
	switch {
	case errors.As(err, &arity):
		r.Op = arity.Op
		r.Nums = [3]int32{clamp32(arity.Want), clamp32(arity.Got)}
	case errors.As(err, &typ):
		r.Op, r.Arg = typ.Op, typ.Arg
		r.Detail = fmt.Sprint(typ.Value)
	case errors.As(err, &rng):
		r.Op, r.Arg = rng.Op, rng.Arg
		r.Nums = [3]int32{clamp32(rng.Value), clamp32(rng.Min), clamp32(rng.Max)}
	case errors.As(err, &notini):
		r.Op = notini.Op
		r.Nums[0] = int32(notini.Status)
	case errors.As(err, &drv):
		r.Op = drv.Op
		r.Detail = drv.Err.Error()
	case errors.As(err, &unk):
		r.Detail = unk.Name
	default:
		r.Detail = err.Error()
	}
	return r
}

// Result converts a reply back into a result and a typed error.
// A successful reply without a value yields a nil result.
func (r Reply) Result() (any, error) {
	switch r.Code {
	case core.CodeOK:
		if r.HasValue {
			return int(r.Value), nil
		}
		return nil, nil
	case core.CodeArity:
		return nil, &core.ArityError{Op: r.Op, Want: int(r.Nums[0]), Got: int(r.Nums[1])}
	case core.CodeType:
		return nil, &core.TypeError{Op: r.Op, Arg: r.Arg, Value: r.Detail}
	case core.CodeRange:
		return nil, &core.RangeError{Op: r.Op, Arg: r.Arg, Value: int(r.Nums[0]), Min: int(r.Nums[1]), Max: int(r.Nums[2])}
	case core.CodeNotInitialized:
		return nil, &core.NotInitializedError{Op: r.Op, Status: core.SetupStatus(r.Nums[0])}
	case core.CodeDriver:
		return nil, &core.DriverError{Op: r.Op, Err: errors.New(r.Detail)}
	case core.CodeUnknownCommand:
		return nil, &core.UnknownCommandError{Name: r.Detail}
	default:
		return nil, &RemoteError{Code: r.Code, Msg: r.Detail}
	}
}

func clamp32(v int) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
