// pinctld owns the GPIO driver and serves validated pin operations over a
// serial link, either as binary frames or as text console commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pinctl/console"
	"pinctl/core"
	"pinctl/driver"
	"pinctl/host/serial"
	"pinctl/internal/config"
	"pinctl/internal/logger"
	"pinctl/metrics"
	"pinctl/server"
)

var (
	configPath = flag.String("config", "/etc/pinctld.yaml", "Path to the YAML configuration file")
	checkOnly  = flag.Bool("check", false, "Validate the configuration and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *checkOnly {
		fmt.Println("configuration ok")
		return
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("pinctld exiting", "err", err)
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	drv, err := driver.New(cfg.Driver)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(drv); err != nil {
			log.Warn("closing driver", "err", err)
		}
	}()

	opts := core.Options{Strict: cfg.Strict, Logger: log.With("component", "dispatcher")}
	var collector *metrics.Collector
	if cfg.Metrics.Listen != "" {
		collector = metrics.New()
		opts.Observer = collector
	}
	d := core.NewDispatcher(drv, opts)
	log.Info("driver ready", "backend", cfg.Driver.Backend, "strict", cfg.Strict, "pins", d.NumPins())

	link, err := openLink(cfg.Link.Serial)
	if err != nil {
		return err
	}
	defer link.Close()

	// The link ending, by peer hangup or console quit, stops the daemon
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopLink := context.AfterFunc(ctx, func() { link.Close() })
	defer stopLink()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		switch cfg.Link.Mode {
		case config.ModeFrames:
			return server.New(d, log.With("component", "server")).Serve(ctx, link)
		default:
			return console.New(d, log.With("component", "console")).Run(ctx, link, link)
		}
	})

	if collector != nil {
		srv := collector.NewServer(cfg.Metrics.Listen)
		g.Go(func() error {
			log.Info("serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		if serr := driver.SetupError(drv); serr != nil {
			log.Warn("driver setup had failed", "err", serr)
		}
		return err
	}
	log.Info("pinctld stopped")
	return nil
}

// stdio joins stdin and stdout into one link
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return os.Stdin.Close() }

func openLink(cfg serial.Config) (io.ReadWriteCloser, error) {
	if cfg.Device == config.StdioDevice {
		return stdio{os.Stdin, os.Stdout}, nil
	}
	return serial.Open(&cfg)
}
