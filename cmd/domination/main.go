package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"domination-engine/internal/client"
	"domination-engine/internal/game"
	"domination-engine/internal/logging"
	"domination-engine/internal/persistence"
	"domination-engine/internal/server"
)

const (
	refreshInterval = 100 * time.Millisecond
	eventLines      = 8
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "domination:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.CommandLine
	settingsFlags := persistence.RegisterSettingsFlags(fs)
	storeKind := fs.String("store", "json", "leaderboard store: json, sqlite or none")
	storePath := fs.String("store-path", "", "leaderboard file, defaults under "+persistence.DefaultDataDir)
	logLevel := fs.String("log-level", "info", "log level")
	logPath := fs.String("log-file", filepath.Join(persistence.DefaultDataDir, "domination.log"), "log file, the terminal is used by the game")
	board := fs.String("leaderboard", "", "print the leaderboard for daily, weekly or alltime and exit")
	saveConfig := fs.Bool("save-config", false, "write the effective settings back to -config on exit")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*logPath), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, *logLevel, false)

	settings, fixed, err := settingsFlags.Load(fs)
	if err != nil {
		logger.Warn().Err(err).Str("path", settingsFlags.Config).Msg("Settings file unreadable, using defaults")
	}
	if len(fixed) > 0 {
		logger.Warn().Strs("fields", fixed).Msg("Invalid settings replaced with defaults")
	}

	var store persistence.Store
	if *storeKind != "none" {
		store, err = persistence.OpenStore(*storeKind, *storePath)
		if err != nil {
			return fmt.Errorf("open leaderboard: %w", err)
		}
		defer store.Close()
	}
	srv := server.NewServer(store, logger)

	if *board != "" {
		period := persistence.ParsePeriod(*board)
		entries, err := srv.Leaderboard(context.Background(), period)
		if err != nil {
			return fmt.Errorf("read leaderboard: %w", err)
		}
		return client.WriteLeaderboard(os.Stdout, period, entries)
	}

	events := client.NewEventLog(eventLines)
	session := srv.Play(settings, server.WithSessionOptions(game.WithObserver(events)))
	defer srv.Stop()

	c := client.NewClient(session, events, logger)
	c.SetTroops(settings.TroopAmount)
	ui := client.NewTermboxUI(c)
	if err := ui.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	runErr := ui.Run(refreshInterval)
	ui.Close()

	snap := session.Snapshot()
	if snap.Result != nil {
		for _, line := range client.ResultLines(*snap.Result)[:3] {
			fmt.Println(line)
		}
	}
	if *saveConfig {
		effective := session.Settings()
		effective.TroopAmount = c.Troops()
		if err := persistence.SaveSettings(settingsFlags.Config, effective); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	} else if err := persistence.RememberTroopAmount(settingsFlags.Config, c.Troops()); err != nil {
		logger.Warn().Err(err).Str("path", settingsFlags.Config).Msg("Could not remember troop amount")
	}
	return runErr
}
