package console

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinctl/core"
	"pinctl/driver/sim"
)

func newConsole() (*Console, *sim.Driver) {
	drv := sim.New(sim.DefaultPinCount)
	return New(core.NewDispatcher(drv, core.Options{}), nil), drv
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		tok  string
		want any
	}{
		{"7", 7},
		{"-3", -3},
		{"2.5", 2.5},
		{"OUTPUT", 1},
		{"PIN_MODE.PWM_OUTPUT", 2},
		{"WRITE.HIGH", 1},
		{"LOW", 0},
		{"seven", "seven"},
		{"output", "output"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseArg(tt.tok), tt.tok)
	}
}

func TestExec(t *testing.T) {
	c, drv := newConsole()

	out, err := c.Exec("wiringPiSetup")
	require.NoError(t, err)
	assert.Equal(t, "0", out)

	out, err = c.Exec("pinMode 7 OUTPUT")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = c.Exec("digitalWrite 7 WRITE.HIGH")
	require.NoError(t, err)

	out, err = c.Exec("digitalRead 7")
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	out, err = c.Exec("numPins")
	require.NoError(t, err)
	assert.Equal(t, "17", out)

	mode, _ := drv.Mode(7)
	assert.Equal(t, core.ModeOutput, mode)
}

func TestExecErrors(t *testing.T) {
	c, _ := newConsole()
	_, err := c.Exec("setup")
	require.NoError(t, err)

	_, err = c.Exec("pinMode seven OUTPUT")
	assert.ErrorIs(t, err, core.ErrType)

	_, err = c.Exec("pinMode 7")
	assert.ErrorIs(t, err, core.ErrArity)

	_, err = c.Exec("digitalWrite 99 HIGH")
	assert.ErrorIs(t, err, core.ErrRange)

	_, err = c.Exec("analogRead 1")
	assert.ErrorIs(t, err, core.ErrUnknownCommand)

	_, err = c.Exec(`digitalRead "7`)
	assert.Error(t, err)
}

func TestExecSpecial(t *testing.T) {
	c, _ := newConsole()

	out, err := c.Exec("  ")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = c.Exec("# comment")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = c.Exec("constants")
	require.NoError(t, err)
	assert.Contains(t, out, "PIN_MODE.OUTPUT = 1")
	assert.Contains(t, out, "WRITE.HIGH = 1")

	out, err = c.Exec("help")
	require.NoError(t, err)
	assert.Contains(t, out, "digitalWrite")

	_, err = c.Exec("quit")
	assert.ErrorIs(t, err, ErrQuit)
}

func TestRun(t *testing.T) {
	c, _ := newConsole()
	in := strings.NewReader("setup\npinMode 3 OUTPUT\ndigitalWrite 3 1\ndigitalRead 3\ndigitalRead 30\nquit\nnumPins\n")
	var out bytes.Buffer

	require.NoError(t, c.Run(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "0", lines[0])
	assert.Equal(t, "ok", lines[1])
	assert.Equal(t, "ok", lines[2])
	assert.Equal(t, "1", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "error range:"), lines[4])
}

func TestRunCancelled(t *testing.T) {
	c, drv := newConsole()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx, strings.NewReader("setup\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, drv.Calls().Setup)
}

func TestRunSkipsOverlongLine(t *testing.T) {
	c, drv := newConsole()
	long := "pinMode " + strings.Repeat("9", 70000) + " 1"
	in := strings.NewReader("setup\n" + long + "\nnumPins\n")
	var out bytes.Buffer

	require.NoError(t, c.Run(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0", lines[0])
	assert.Equal(t, "error bad_request: line exceeds 4096 bytes", lines[1])
	assert.Equal(t, "17", lines[2])
	assert.Zero(t, drv.Calls().SetMode)
}

func TestReadLine(t *testing.T) {
	br := bufio.NewReaderSize(strings.NewReader("short\n"+strings.Repeat("x", 50)+"\r\nlast"), 16)

	line, tooLong, err := readLine(br, 20)
	require.NoError(t, err)
	assert.False(t, tooLong)
	assert.Equal(t, "short", line)

	_, tooLong, err = readLine(br, 20)
	require.NoError(t, err)
	assert.True(t, tooLong)

	line, tooLong, err = readLine(br, 20)
	require.NoError(t, err)
	assert.False(t, tooLong)
	assert.Equal(t, "last", line)

	_, _, err = readLine(br, 20)
	assert.ErrorIs(t, err, io.EOF)
}
