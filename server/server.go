// Package server exposes a core.Dispatcher over the framed link protocol.
// Requests are handled strictly in arrival order; each reply carries the
// sequence number of the request it answers.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"pinctl/core"
	"pinctl/protocol"
)

// CodeBadRequest is sent for payloads that cannot be decoded
const CodeBadRequest core.Code = "bad_request"

// Server answers link requests from one Dispatcher
type Server struct {
	d    *core.Dispatcher
	log  *slog.Logger
	dict string
}

// New creates a server for d. A nil logger discards output.
func New(d *core.Dispatcher, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		d:    d,
		log:  log,
		dict: Dictionary(d.Registry()),
	}
}

// Dictionary renders the text a client retrieves with identify requests:
// a version line followed by one "id name format" line per command.
func Dictionary(r *core.CommandRegistry) string {
	var b strings.Builder
	b.WriteString(protocol.Version)
	b.WriteByte('\n')
	b.WriteString(r.GetDictionary())
	return b.String()
}

// Serve answers requests on rw until ctx is cancelled or the stream fails.
// If rw is an io.Closer it is closed when ctx is done so a blocked read
// returns.
func (s *Server) Serve(ctx context.Context, rw io.ReadWriter) error {
	if c, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}

	conn := protocol.NewConn(rw)
	s.log.Info("link server started", "commands", s.d.Registry().Count())
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				s.log.Info("link closed by peer")
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		reply := s.Handle(frame.Payload)
		if err := conn.WriteFrame(frame.Seq, protocol.EncodeReply(reply)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("write reply: %w", err)
		}
		if n := conn.Resyncs(); n > 0 {
			s.log.Debug("link resynchronized", "resyncs", n)
		}
	}
}

// Handle decodes one request payload, dispatches it and builds the reply
func (s *Server) Handle(payload []byte) protocol.Reply {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		s.log.Warn("malformed request", "err", err)
		return protocol.Reply{Code: CodeBadRequest, Detail: err.Error()}
	}
	if req.CommandID == protocol.IdentifyCommandID {
		return s.identify(req.Args)
	}

	result, err := s.d.CallID(req.CommandID, req.Args...)
	if err != nil {
		s.log.Debug("request failed", "cmd", req.CommandID, "err", err)
	}
	return protocol.ReplyFor(result, err)
}

// identify serves one dictionary chunk. Args: offset, count.
// The reply value echoes the offset; an empty detail marks the end.
func (s *Server) identify(args []any) protocol.Reply {
	if len(args) != 2 {
		return protocol.ReplyFor(nil, &core.ArityError{Op: "identify", Want: 2, Got: len(args)})
	}
	offset, ok := core.Number(args[0], true)
	if !ok {
		return protocol.ReplyFor(nil, &core.TypeError{Op: "identify", Arg: "offset", Value: args[0]})
	}
	count, ok := core.Number(args[1], true)
	if !ok {
		return protocol.ReplyFor(nil, &core.TypeError{Op: "identify", Arg: "count", Value: args[1]})
	}
	if offset < 0 || offset > len(s.dict) {
		return protocol.ReplyFor(nil, &core.RangeError{Op: "identify", Arg: "offset", Value: offset, Min: 0, Max: len(s.dict) + 1})
	}
	if count <= 0 || count > protocol.IdentifyChunkSize {
		count = protocol.IdentifyChunkSize
	}
	end := min(offset+count, len(s.dict))
	return protocol.Reply{
		Code:     core.CodeOK,
		HasValue: true,
		Value:    int32(offset),
		Detail:   s.dict[offset:end],
	}
}
