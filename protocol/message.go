package protocol

import (
	"fmt"
	"unicode/utf8"

	"pinctl/core"
)

// Request is a decoded command request
type Request struct {
	CommandID uint16
	Args      []any
}

// EncodeRequest builds a request payload: command ID, argument count, then
// each tagged argument
func EncodeRequest(req Request) ([]byte, error) {
	out := NewScratchOutput()
	EncodeVLQUint(out, uint32(req.CommandID))
	EncodeVLQUint(out, uint32(len(req.Args)))
	for _, a := range req.Args {
		EncodeArg(out, a)
	}
	if out.Overflowed() {
		return nil, fmt.Errorf("%w: request arguments exceed %d bytes", ErrFrameTooLong, MessagePayloadMax)
	}
	return append([]byte(nil), out.Result()...), nil
}

// DecodeRequest parses a request payload
func DecodeRequest(payload []byte) (Request, error) {
	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return Request{}, fmt.Errorf("command id: %w", err)
	}
	argc, err := DecodeVLQUint(&payload)
	if err != nil {
		return Request{}, fmt.Errorf("argument count: %w", err)
	}
	if argc > MessagePayloadMax {
		return Request{}, fmt.Errorf("argument count %d: %w", argc, ErrInvalidVLQ)
	}
	req := Request{CommandID: uint16(id)}
	for i := uint32(0); i < argc; i++ {
		a, err := DecodeArg(&payload)
		if err != nil {
			return Request{}, fmt.Errorf("argument %d: %w", i, err)
		}
		req.Args = append(req.Args, a)
	}
	return req, nil
}

// maxDetail keeps a reply inside one frame whatever its other fields hold
const maxDetail = 160

// Reply is a decoded command reply. Code is CodeOK on success, in which
// case Value holds the result when HasValue is set. On failure Op, Arg and
// Nums carry the structured fields of the error.
type Reply struct {
	Code     core.Code
	HasValue bool
	Value    int32
	Op       string
	Arg      string
	Nums     [3]int32
	Detail   string
}

// EncodeReply builds a reply payload
func EncodeReply(r Reply) []byte {
	out := NewScratchOutput()
	EncodeVLQString(out, string(r.Code))
	var flags uint32
	if r.HasValue {
		flags |= 1
	}
	EncodeVLQUint(out, flags)
	EncodeVLQInt(out, r.Value)
	EncodeVLQString(out, r.Op)
	EncodeVLQString(out, r.Arg)
	for _, n := range r.Nums {
		EncodeVLQInt(out, n)
	}
	EncodeVLQString(out, truncateDetail(r.Detail))
	return append([]byte(nil), out.Result()...)
}

// truncateDetail cuts s to maxDetail bytes without splitting a UTF-8 sequence
func truncateDetail(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	n := maxDetail
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// DecodeReply parses a reply payload
func DecodeReply(payload []byte) (Reply, error) {
	var r Reply
	code, err := DecodeVLQString(&payload)
	if err != nil {
		return r, fmt.Errorf("reply code: %w", err)
	}
	r.Code = core.Code(code)
	flags, err := DecodeVLQUint(&payload)
	if err != nil {
		return r, fmt.Errorf("reply flags: %w", err)
	}
	r.HasValue = flags&1 != 0
	if r.Value, err = DecodeVLQInt(&payload); err != nil {
		return r, fmt.Errorf("reply value: %w", err)
	}
	if r.Op, err = DecodeVLQString(&payload); err != nil {
		return r, fmt.Errorf("reply op: %w", err)
	}
	if r.Arg, err = DecodeVLQString(&payload); err != nil {
		return r, fmt.Errorf("reply arg: %w", err)
	}
	for i := range r.Nums {
		if r.Nums[i], err = DecodeVLQInt(&payload); err != nil {
			return r, fmt.Errorf("reply field %d: %w", i, err)
		}
	}
	if r.Detail, err = DecodeVLQString(&payload); err != nil {
		return r, fmt.Errorf("reply detail: %w", err)
	}
	return r, nil
}
