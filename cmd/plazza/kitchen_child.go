package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kcoder/plazza"
	"github.com/kcoder/plazza/internal/kitchen"
)

// kitchenChildCommand is the hidden re-exec target internal/reception's
// FIFOSpawner launches for every new kitchen: its flags mirror exactly
// the argv FIFOSpawner.SpawnKitchen builds.
var kitchenChildCommand = &cli.Command{
	Name:   "kitchen-child",
	Hidden: true,
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "id", Required: true},
		&cli.Float64Flag{Name: "multiplier", Required: true},
		&cli.IntFlag{Name: "cooks", Required: true},
		&cli.Int64Flag{Name: "restock-ms", Required: true},
		&cli.StringFlag{Name: "run-dir", Required: true},
	},
	Action: runKitchenChild,
}

func runKitchenChild(c *cli.Context) error {
	cfg := plazza.Config{
		Multiplier:      c.Float64("multiplier"),
		CooksPerKitchen: c.Int("cooks"),
		RestockPeriod:   time.Duration(c.Int64("restock-ms")) * time.Millisecond,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	id := c.Uint64("id")
	runDir := c.String("run-dir")
	orderPath, sharedPath := kitchen.FIFOPaths(runDir, id)

	return kitchen.RunChild(kitchen.ChildArgs{
		KitchenID:      id,
		PlazzaCf:       cfg,
		OrderPipePath:  orderPath,
		SharedPipePath: sharedPath,
	})
}
