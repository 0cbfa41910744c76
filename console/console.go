// Package console is a line-oriented text front end for a core.Dispatcher,
// suitable for a terminal on stdin or a UART:
//
//	pinMode 7 OUTPUT
//	digitalWrite 7 HIGH
//	digitalRead 7
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"pinctl/core"
)

// ErrQuit is returned by Exec for the quit command
var ErrQuit = errors.New("quit")

// MaxLineLength bounds one command line. Longer lines are skipped with an
// error reply and the console keeps reading.
const MaxLineLength = 4096

// CodeBadRequest marks input the console could not turn into a command
const CodeBadRequest core.Code = "bad_request"

// LineTooLongError reports a command line over MaxLineLength
type LineTooLongError struct {
	Limit int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line exceeds %d bytes", e.Limit)
}

func (e *LineTooLongError) Code() core.Code { return CodeBadRequest }

// Console executes text commands against a dispatcher
type Console struct {
	d      *core.Dispatcher
	log    *slog.Logger
	Prompt string
}

// New creates a console for d. A nil logger discards output.
func New(d *core.Dispatcher, log *slog.Logger) *Console {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Console{d: d, log: log}
}

// Run reads commands from r and writes one response line per command to w.
// It returns nil at end of input or on quit.
func (c *Console) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(&pollReader{ctx: ctx, r: r})
	for {
		if c.Prompt != "" {
			fmt.Fprint(w, c.Prompt)
		}
		line, tooLong, err := readLine(br, MaxLineLength)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var out string
		if tooLong {
			err = &LineTooLongError{Limit: MaxLineLength}
			c.log.Warn("console line dropped", "limit", MaxLineLength)
		} else {
			out, err = c.Exec(line)
		}
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintf(w, "error %s: %v\n", core.CodeOf(err), err)
		case out != "":
			fmt.Fprintln(w, out)
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed to its end and reported through tooLong instead.
func readLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		frag, more, err := br.ReadLine()
		if err != nil {
			if tooLong {
				return "", true, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(frag) > limit {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if !more {
			return string(buf), tooLong, nil
		}
	}
}

// pollReader turns the empty reads of a port with a read timeout into a
// blocking read that still notices cancellation
type pollReader struct {
	ctx context.Context
	r   io.Reader
}

func (p *pollReader) Read(b []byte) (int, error) {
	for {
		n, err := p.r.Read(b)
		if n > 0 || err != nil {
			return n, err
		}
		if err := p.ctx.Err(); err != nil {
			return 0, err
		}
	}
}

// Exec runs one command line and returns its printable result
func (c *Console) Exec(line string) (string, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", line, err)
	}
	if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
		return "", nil
	}

	name, rest := tokens[0], tokens[1:]
	switch name {
	case "quit", "exit", "q":
		return "", ErrQuit
	case "help", "?":
		return c.help(), nil
	case "constants":
		return constants(), nil
	}

	args := make([]any, len(rest))
	for i, tok := range rest {
		args[i] = ParseArg(tok)
	}
	c.log.Debug("console command", "op", name, "args", args)

	result, err := c.d.Call(name, args...)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "ok", nil
	}
	return fmt.Sprint(result), nil
}

// ParseArg converts one token: integers and decimals become numbers,
// constant names (OUTPUT, WRITE.HIGH) their values, anything else stays a
// string so the dispatcher can reject it.
func ParseArg(tok string) any {
	if n, err := strconv.Atoi(tok); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	if v, ok := core.Lookup(tok); ok {
		return v
	}
	return tok
}

func (c *Console) help() string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, name := range c.d.Registry().Names() {
		cmd, _ := c.d.Registry().Lookup(name)
		fmt.Fprintf(&b, "  %-18s %s\n", name, cmd.Format)
	}
	b.WriteString("  constants          list named values\n")
	b.WriteString("  quit               leave the console")
	return b.String()
}

func constants() string {
	names := core.ConstantNames()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		v, _ := core.Lookup(name)
		lines = append(lines, name+" = "+strconv.Itoa(v))
	}
	return strings.Join(lines, "\n")
}
