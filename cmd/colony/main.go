package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/colonysim/colony/internal/config"
	"github.com/colonysim/colony/internal/core/event"
	coresys "github.com/colonysim/colony/internal/core/system"
	"github.com/colonysim/colony/internal/data"
	"github.com/colonysim/colony/internal/feed"
	"github.com/colonysim/colony/internal/scripting"
	"github.com/colonysim/colony/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              colony  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        tile world · job simulation        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mname:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/colony.toml"
	if p := os.Getenv("COLONY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Open the event journal
	printSection("Journal")
	journal, err := openJournal(ctx, cfg.Journal, log)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if journal != nil {
		defer journal.Close()
		printOK(fmt.Sprintf("%s journal ready", cfg.Journal.Backend))
	} else {
		printOK("journal disabled")
	}
	fmt.Println()

	// 4. Load data tables and scripts
	printSection("Data")
	protos, err := data.LoadPrototypeTable(cfg.World.Prototypes)
	if err != nil {
		return fmt.Errorf("load prototypes: %w", err)
	}
	printStat("object prototypes", protos.Count())

	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer engine.Close()
		printOK(fmt.Sprintf("lua scripts loaded from %s", cfg.Scripting.Dir))
	}
	fmt.Println()

	// 5. Build the world
	printSection("World")
	w, err := buildWorld(cfg, protos, engine, log)
	if err != nil {
		return err
	}
	printStat("tiles", w.Width()*w.Height())

	// 6. Wire the event bus and systems
	bus := event.NewBus()
	clock := &system.Clock{}
	system.NewBridge(w, bus, clock)

	commands := system.NewCommandSystem(w, cfg.Simulation.CommandQueueSize, 0, log)

	runner := coresys.NewRunner()
	runner.Register(commands)
	runner.Register(system.NewSimulationSystem(w, clock))
	runner.Register(system.NewDispatchSystem(bus))
	var journalSys *system.JournalSystem
	if journal != nil {
		journalSys = system.NewJournalSystem(bus, journal, log, cfg.Journal.FlushIntervalTicks)
		runner.Register(journalSys)
	}
	runner.Register(system.NewCleanupSystem(w, log))

	// 7. Characters and scripted build orders go through the bridge so they are journaled.
	spawned := spawnCharacters(w, cfg.Simulation)
	printStat("characters", spawned)

	if engine != nil {
		orders, err := engine.BuildOrders()
		if err != nil {
			return fmt.Errorf("build orders: %w", err)
		}
		applied := 0
		for _, o := range orders {
			cmd, err := orderToCommand(o)
			if err == nil {
				err = commands.Apply(cmd)
			}
			if err != nil {
				log.Warn("scripted build order rejected", zap.String("mode", o.Mode), zap.Error(err))
				continue
			}
			applied++
		}
		printStat("scripted build orders", applied)
		printStat("queued jobs", w.JobQueue().Count())
	}
	fmt.Println()

	// 8. Observer feed
	var hub *feed.Hub
	if cfg.Feed.Enabled {
		hub = feed.NewHub(cfg.Feed.OutQueueSize, log)
		bus.SubscribeAll(hub.Publish)
		srv := feed.NewServer(hub, commands, log)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Feed.BindAddress); err != nil {
				log.Error("feed server stopped", zap.Error(err))
			}
		}()
	}

	// 9. Start simulation loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	if hub != nil {
		printReady(fmt.Sprintf("feed on ws://%s/ws", cfg.Feed.BindAddress))
	}
	printReady(fmt.Sprintf("simulation loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()),
				zap.Uint64("ticks", runner.Ticks()))
			// Deliver anything emitted since the last dispatch, then persist it.
			runner.TickPhase(coresys.PhaseOutput, 0)
			if journalSys != nil {
				journalSys.Flush()
			}
			cancel()
			log.Info("simulation stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
