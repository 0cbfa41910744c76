package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pinctl/console"
	"pinctl/core"
	"pinctl/host/client"
	"pinctl/host/serial"
)

var (
	device  string
	baud    int
	timeout time.Duration
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pinctl",
	Short: "Drive GPIO pins through a pinctld daemon",
	Long: `pinctl connects to pinctld over a serial link and runs one pin
operation per invocation. Modes and levels accept numbers or names
(OUTPUT, PIN_MODE.INPUT, HIGH, WRITE.LOW).

Flags go before the operation's arguments. A negative argument such as
"pinctl read -1" is passed through to pinctld, which rejects it with a
range error; "pinctl read -- -1" is equivalent.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&device, "device", "d", "/dev/ttyAMA0", "serial device connected to pinctld")
	flags.IntVarP(&baud, "baud", "b", serial.DefaultBaud, "baud rate")
	flags.DurationVar(&timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log link traffic to stderr")

	rootCmd.AddCommand(numPinsCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(delayCmd)
	rootCmd.AddCommand(blinkCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(constantsCmd)
}

// Execute runs the command line args (without the program name)
func Execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(numericArgs(args))
	return rootCmd.ExecuteContext(ctx)
}

// numericArgs ends flag parsing before the first negative number so that
// pflag does not read "-1" as a shorthand flag
func numericArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if len(arg) > 1 && arg[0] == '-' {
			if _, err := strconv.ParseFloat(arg, 64); err == nil {
				out := make([]string, 0, len(args)+1)
				out = append(out, args[:i]...)
				out = append(out, "--")
				return append(out, args[i:]...)
			}
		}
	}
	return args
}

func dial(ctx context.Context) (*client.Client, error) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	cfg := serial.DefaultConfig(device)
	cfg.Baud = baud
	return client.Dial(ctx, cfg, client.WithTimeout(timeout), client.WithLogger(log))
}

// withClient runs fn against a freshly dialed client
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	ctx := cmd.Context()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

// number parses a decimal argument or a constant name
func number(arg string) (int, error) {
	switch v := console.ParseArg(arg).(type) {
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%q is not an integer or a known constant", arg)
	}
}

func pinArg(arg string) (int, error) {
	pin, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("pin %q: %w", arg, core.ErrType)
	}
	return pin, nil
}
