package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pinctl/blink"
	"pinctl/core"
	"pinctl/host/client"
)

var numPinsCmd = &cobra.Command{
	Use:   "num-pins",
	Short: "Print the number of addressable pins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			n, err := c.NumPins(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Initialize the daemon's GPIO driver",
	Long:  `Runs the driver's one-time setup and prints its status code (0 on success).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			code, err := c.Setup(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			if code != 0 {
				return fmt.Errorf("setup failed with code %d", code)
			}
			return nil
		})
	},
}

var modeCmd = &cobra.Command{
	Use:   "mode <pin> <mode>",
	Short: "Set a pin's mode (INPUT, OUTPUT, PWM_OUTPUT)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := pinArg(args[0])
		if err != nil {
			return err
		}
		mode, err := number(args[1])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			return c.PinMode(ctx, pin, core.Mode(mode))
		})
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <pin> <level>",
	Short: "Drive a pin LOW or HIGH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := pinArg(args[0])
		if err != nil {
			return err
		}
		level, err := number(args[1])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			return c.DigitalWrite(ctx, pin, core.Level(level))
		})
	},
}

var readCmd = &cobra.Command{
	Use:   "read <pin>",
	Short: "Print a pin's level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := pinArg(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			v, err := c.DigitalRead(ctx, pin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var delayCmd = &cobra.Command{
	Use:   "delay <microseconds>",
	Short: "Busy-wait on the daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		us, err := number(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			return c.DelayMicroseconds(ctx, us)
		})
	},
}

var (
	blinkInterval time.Duration
	blinkCount    int
)

var blinkCmd = &cobra.Command{
	Use:   "blink <pin>",
	Short: "Toggle a pin until interrupted",
	Long: `Sets up the driver, makes the pin an output and toggles it every
--interval. Stops after --count toggles, or on Ctrl-C when --count is 0,
leaving the pin LOW.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := pinArg(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			n, err := blink.Blink(ctx, c, pin, blinkInterval, blinkCount)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d toggles\n", n)
			return err
		})
	},
}

func init() {
	blinkCmd.Flags().DurationVar(&blinkInterval, "interval", 125*time.Millisecond, "time between toggles")
	blinkCmd.Flags().IntVar(&blinkCount, "count", 0, "number of toggles (0 = until interrupted)")
}

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Print the daemon's command dictionary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			fmt.Fprint(cmd.OutOrStdout(), c.Dictionary())
			return nil
		})
	},
}

var constantsCmd = &cobra.Command{
	Use:   "constants",
	Short: "List the named modes and levels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range core.ConstantNames() {
			v, _ := core.Lookup(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d\n", name, v)
		}
		return nil
	},
}
