// Command plazza is the simulator's single binary: invoked normally it is
// the Reception process (spec.md §6, "Invocation"); invoked with the
// hidden kitchen-child subcommand it is a re-exec'd Kitchen subprocess
// (spec.md §9, fork replacement). Keeping both in one binary means
// internal/reception's FIFOSpawner can re-exec os.Executable() without
// shipping a second build artifact.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/kitchen"
	"github.com/kcoder/plazza/internal/logging"
	"github.com/kcoder/plazza/internal/parser"
	"github.com/kcoder/plazza/internal/reception"
)

func main() {
	app := &cli.App{
		Name:      "plazza",
		Usage:     "a concurrent pizza-cooking simulator",
		ArgsUsage: "<multiplier> <cooks_per_kitchen> <restock_time_ms>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		Action: runReception,
		Commands: []*cli.Command{
			kitchenChildCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a failure to spec.md §6's process exit codes: 84 for
// usage/argument problems, 1/2 for the child-worker failure taxonomy,
// 1 for anything else uncategorized.
func exitCodeFor(err error) int {
	var perr *plazza.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case plazza.ErrCodeUsage:
			return 84
		case plazza.ErrCodeFork:
			return 2
		}
	}
	return 1
}

// runReception is the default command's Action: it parses the three
// positional arguments into a plazza.Config, spawns the FIFO run
// directory, and drives the Reception's manager loop concurrently with
// the stdin order-reading loop until EOF, `exit`, or a signal.
func runReception(c *cli.Context) error {
	cfg, err := parseConfigArgs(c.Args().Slice())
	if err != nil {
		cli.ShowAppHelp(c)
		return err
	}

	level := logging.LevelInfo
	if c.Bool("verbose") {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(&logging.Config{Level: level})
	logging.SetDefault(logger)

	runDir, err := os.MkdirTemp("", "plazza-")
	if err != nil {
		return plazza.WrapError("main.runReception", plazza.ErrCodeFork, err)
	}
	defer os.RemoveAll(runDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shared, err := reception.OpenShared(ctx, runDir)
	if err != nil {
		return plazza.WrapError("main.runReception", plazza.ErrCodeFork, err)
	}
	defer shared.Close()

	spawner := reception.NewFIFOSpawner(ctx, runDir, cfg)
	metrics := plazza.NewMetrics()
	obs := plazza.NewMetricsObserver(metrics)
	r := reception.New(cfg, shared, spawner, obs, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return readOrders(gctx, stop, r)
	})

	runErr := g.Wait()
	metrics.Stop()
	if termErr := spawner.TerminateAll(); termErr != nil {
		logger.WithError(termErr).Warn("error terminating kitchens at shutdown")
	}
	return runErr
}

// readOrders implements spec.md §6's CLI grammar: one command per line on
// stdin, until `exit` or EOF, at which point it cancels the rest of the
// run via stop so the manager loop also returns.
func readOrders(ctx context.Context, stop context.CancelFunc, r *reception.Reception) error {
	defer stop()

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := sc.Text()

		switch line {
		case "":
			continue
		case "exit":
			return nil
		case "status":
			fmt.Print(r.RenderStatus())
			continue
		}

		orders, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		pizzas := make([]plazza.Pizza, 0, len(orders))
		for _, o := range orders {
			for i := 0; i < o.Quantity; i++ {
				pizzas = append(pizzas, o.Pizza)
			}
		}
		if len(pizzas) == 0 {
			continue
		}
		if err := r.Dispatch(pizzas); err != nil {
			return err
		}
	}
	return sc.Err()
}

// parseConfigArgs maps the three required positional arguments onto a
// plazza.Config, per spec.md §6's invocation grammar.
func parseConfigArgs(args []string) (plazza.Config, error) {
	if len(args) != 3 {
		return plazza.Config{}, plazza.NewError("main.parseConfigArgs", plazza.ErrCodeUsage,
			fmt.Sprintf("expected 3 arguments, got %d", len(args)))
	}

	multiplier, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return plazza.Config{}, plazza.NewError("main.parseConfigArgs", plazza.ErrCodeUsage,
			"multiplier must be a number: "+err.Error())
	}

	cooks, err := strconv.Atoi(args[1])
	if err != nil {
		return plazza.Config{}, plazza.NewError("main.parseConfigArgs", plazza.ErrCodeUsage,
			"cooks_per_kitchen must be an integer: "+err.Error())
	}

	restockMs, err := strconv.Atoi(args[2])
	if err != nil {
		return plazza.Config{}, plazza.NewError("main.parseConfigArgs", plazza.ErrCodeUsage,
			"restock_time_ms must be an integer: "+err.Error())
	}

	cfg := plazza.Config{
		Multiplier:      multiplier,
		CooksPerKitchen: cooks,
		RestockPeriod:   time.Duration(restockMs) * time.Millisecond,
	}
	if err := cfg.Validate(); err != nil {
		return plazza.Config{}, err
	}
	return cfg, nil
}
