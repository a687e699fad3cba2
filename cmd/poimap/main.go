package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb/maptile"

	"poimap/internal/config"
	"poimap/internal/featurecache"
	"poimap/internal/logging"
	"poimap/internal/mutation"
	"poimap/internal/poiclient"
	"poimap/internal/settings"
	"poimap/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "poimap:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to poimap.yaml")
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		return err
	}

	closeLog, err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("saving settings failed")
		}
	}()

	client := poiclient.New(poiclient.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	cache := featurecache.New(client, featurecache.Options{
		Limit:   cfg.API.Limit,
		MinZoom: maptile.Zoom(cfg.Map.MinLoadZoom),
		MaxZoom: maptile.Zoom(cfg.Map.MaxLoadZoom),
	})
	gateway := mutation.New(client, cache, cfg.Map.DefaultName)

	logging.Info().Str("api", cfg.API.BaseURL).Str("theme", store.Theme()).Msg("poimap starting")
	m := tui.New(tui.Deps{
		Cache:     cache,
		Mutations: gateway,
		Settings:  store,
		Map:       cfg.Map,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return err
	}
	logging.Info().Msg("poimap stopped")
	return nil
}
