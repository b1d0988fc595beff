package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/colonysim/colony/internal/config"
	"github.com/colonysim/colony/internal/data"
	"github.com/colonysim/colony/internal/persist"
	"github.com/colonysim/colony/internal/scripting"
	"github.com/colonysim/colony/internal/system"
	"github.com/colonysim/colony/internal/world"
	"go.uber.org/zap"
)

// openJournal returns nil when journaling is disabled.
func openJournal(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (persist.Journal, error) {
	switch cfg.Backend {
	case "sqlite":
		j, err := persist.OpenSQLite(ctx, cfg.Path, log)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "postgres":
		connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		j, err := persist.OpenPostgres(connCtx, cfg, log)
		if err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, nil
}

// buildWorld creates the grid and lays out its tiles. A CSV layout wins over a
// Lua generator, which wins over random generation.
func buildWorld(cfg *config.Config, protos *data.PrototypeTable, engine *scripting.Engine, log *zap.Logger) (*world.World, error) {
	w := world.New(world.Config{
		Width:          cfg.World.Width,
		Height:         cfg.World.Height,
		JobDuration:    cfg.Simulation.JobDuration,
		CharacterSpeed: cfg.Simulation.CharacterSpeed,
	}, log)

	if engine != nil {
		engine.SetWorldSize(w.Width(), w.Height())
	}

	if err := protos.RegisterAll(w); err != nil {
		return nil, err
	}
	if err := w.ValidatePrototypes(world.ObjectWall); err != nil {
		return nil, fmt.Errorf("prototypes: %w", err)
	}

	switch {
	case cfg.World.Layout != "":
		layout, err := data.LoadTileLayout(cfg.World.Layout, cfg.World.Width, cfg.World.Height)
		if err != nil {
			return nil, err
		}
		if err := layout.Apply(w); err != nil {
			return nil, fmt.Errorf("apply layout: %w", err)
		}
		log.Info("tiles loaded from layout", zap.String("path", cfg.World.Layout))
	case engine != nil && engine.HasFunction("generate_tile"):
		w.GenerateTiles(func(x, y int) world.TileType {
			name, ok := engine.GenerateTile(x, y, w.Width(), w.Height())
			if !ok {
				return world.TileEmpty
			}
			typ, err := world.ParseTileType(name)
			if err != nil {
				log.Warn("lua generate_tile: bad tile type", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
				return world.TileEmpty
			}
			return typ
		})
		log.Info("tiles generated by lua")
	case cfg.World.Randomize:
		seed := cfg.World.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		w.RandomizeTiles(rand.New(rand.NewSource(seed)))
		log.Info("tiles randomized", zap.Int64("seed", seed))
	}

	if engine != nil {
		w.SetJobDurationFunc(func(typ world.ObjectType) float64 {
			return engine.JobDuration(string(typ), 0)
		})
	}
	return w, nil
}

// spawnCharacters places the configured number of characters on the spawn tile.
func spawnCharacters(w *world.World, cfg config.SimulationConfig) int {
	x, y := cfg.SpawnX, cfg.SpawnY
	if x < 0 {
		x = w.Width() / 2
	}
	if y < 0 {
		y = w.Height() / 2
	}
	t, err := w.TileAt(x, y)
	if err != nil {
		t, _ = w.TileAt(w.Width()/2, w.Height()/2)
	}
	for i := 0; i < cfg.Characters; i++ {
		w.SpawnCharacter(t)
	}
	return cfg.Characters
}

// orderToCommand maps a scripted build order onto a command.
func orderToCommand(o scripting.BuildOrder) (system.Command, error) {
	cmd := system.Command{Type: o.Type, X1: o.X1, Y1: o.Y1, X2: o.X2, Y2: o.Y2}
	switch o.Mode {
	case "foundation", "floor":
		cmd.Op = system.OpFoundation
	case "bulldoze":
		cmd.Op = system.OpBulldoze
	case "object", "build":
		cmd.Op = system.OpBuild
	default:
		return cmd, fmt.Errorf("%w: mode %q", system.ErrUnknownCommand, o.Mode)
	}
	return cmd, nil
}
