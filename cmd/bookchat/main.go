package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"bookchat/internal/chat"
	"bookchat/internal/config"
	"bookchat/internal/logging"
	"bookchat/internal/server"
	"bookchat/internal/service"
	"bookchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		serve   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/bookchat/config.yaml if not provided)")
	flag.BoolVar(&serve, "serve", false, "Serve the chat over HTTP instead of the terminal UI")
	flag.Parse()

	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err == nil {
		err = cfg.Validate()
	}

	logCfg := logConfig(cfg)
	logging.Init(logCfg)
	log := logging.Component("main")
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	catalog, err := buildCatalog(cfg)
	if err != nil {
		os.Exit(1)
	}
	machine := catalog.NewMachine()

	if serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv := server.New(server.Config{
			Addr:           cfg.Server.Addr,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			SessionTTL:     time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute,
		}, machine, logging.Logger())
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	// the terminal UI owns the screen from here on
	logging.Init(tuiLogConfig(logCfg))
	m := tui.New(chat.NewConversation(machine))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("terminal UI failed")
	}
}

func logConfig(cfg *config.AppConfig) logging.Config {
	if cfg == nil {
		return logging.Config{Level: "info", Format: "json"}
	}
	return logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
}

// tuiLogConfig drops routine logs once the terminal UI is running, unless debug is on.
func tuiLogConfig(c logging.Config) logging.Config {
	if logging.ParseLevel(c.Level) > logging.ParseLevel("debug") {
		c.Output = io.Discard
	}
	return c
}

// buildCatalog builds the catalog and logs a failure through the current logger,
// which still writes to the terminal at this point.
func buildCatalog(cfg *config.AppConfig) (*service.Catalog, error) {
	catalog, err := service.Build(service.OptionsFromConfig(cfg), logging.Logger())
	if err != nil {
		log := logging.Component("main")
		log.Error().Err(err).Msg("catalog build failed")
		return nil, err
	}
	return catalog, nil
}
