package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"domination-engine/internal/client"
	"domination-engine/internal/logging"
	"domination-engine/internal/persistence"
	"domination-engine/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "domination-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.CommandLine
	settingsFlags := persistence.RegisterSettingsFlags(fs)
	games := fs.Int("games", 1, "number of games to simulate, seeds increase by one per game")
	step := fs.Float64("step", sim.DefaultStep, "simulated seconds per tick")
	maxTime := fs.Float64("max-time", sim.DefaultMaxTime, "simulated seconds before a game is abandoned")
	idle := fs.Bool("idle", false, "issue no player orders")
	storeKind := fs.String("store", "none", "record finished games: json, sqlite or none")
	storePath := fs.String("store-path", "", "leaderboard file, defaults under "+persistence.DefaultDataDir)
	logLevel := fs.String("log-level", "info", "log level")
	pretty := fs.Bool("pretty", true, "human-readable logs on stderr")
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel, *pretty)
	settings, fixed, err := settingsFlags.Load(fs)
	if err != nil {
		logger.Warn().Err(err).Str("path", settingsFlags.Config).Msg("Settings file unreadable, using defaults")
	}
	if len(fixed) > 0 {
		logger.Warn().Strs("fields", fixed).Msg("Invalid settings replaced with defaults")
	}
	if settings.Seed == 0 {
		settings.Seed = time.Now().UnixNano()
	}

	var store persistence.Store
	if *storeKind != "none" {
		store, err = persistence.OpenStore(*storeKind, *storePath)
		if err != nil {
			return fmt.Errorf("open leaderboard: %w", err)
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var player sim.Player = sim.DefaultGreedy()
	if *idle {
		player = nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for i := 0; i < *games; i++ {
		st := settings
		st.Seed += int64(i)
		rep, err := sim.Run(ctx, sim.Config{Settings: st, Step: *step, MaxTime: *maxTime, Player: player, Logger: logger})
		if encErr := enc.Encode(rep); encErr != nil {
			return fmt.Errorf("write report: %w", encErr)
		}
		if err != nil {
			return err
		}
		if store != nil && rep.Result != nil {
			if err := store.Save(ctx, rep.Result.Entry); err != nil {
				return fmt.Errorf("save result: %w", err)
			}
		}
	}

	if store != nil {
		entries, err := persistence.Leaderboard(ctx, store, persistence.PeriodAllTime, time.Now())
		if err != nil {
			return fmt.Errorf("read leaderboard: %w", err)
		}
		return client.WriteLeaderboard(os.Stderr, persistence.PeriodAllTime, entries)
	}
	return nil
}
