package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"drivesim/config"
	"drivesim/logging"
	"drivesim/network"
	"drivesim/protocol"
	"drivesim/room"
	"drivesim/telemetry"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	boot := logging.New(logging.Config{})
	if _, err := config.InitConfig(); err != nil {
		boot.Error().Err(err).Msg("load .env")
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		boot.Error().Err(err).Msg("config")
		return err
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	metrics, err := telemetry.Default()
	if err != nil {
		log.Error().Err(err).Msg("telemetry")
		return err
	}
	variants, err := config.LoadVariants(cfg.VariantsFile)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.VariantsFile).Msg("variants")
		return err
	}
	if _, ok := variants[cfg.Variant]; !ok {
		err := fmt.Errorf("default variant %q not defined", cfg.Variant)
		log.Error().Err(err).Msg("variants")
		return err
	}
	logStartup(log, cfg, len(variants))

	sessions := room.NewManager(room.ManagerOptions{
		Variants:       variants,
		DefaultVariant: cfg.Variant,
		Policy:         cfg.DevicePolicy(),
		TickHz:         protocol.SimTickHz,
		Log:            log,
		Metrics:        metrics,
	})
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := network.NewServer(cfg, sessions, log).ListenAndServe(ctx); err != nil {
		log.Error().Err(err).Msg("server")
		return err
	}
	log.Info().Msg("bye")
	return nil
}

func logStartup(log zerolog.Logger, cfg config.Config, variants int) {
	log.Info().
		Str("addr", cfg.Addr).
		Str("variant", cfg.Variant).
		Int("variants", variants).
		Strs("wheel_keywords", cfg.DeviceKeywords).
		Bool("generic_pads", cfg.AllowGenericPads).
		Msg("drivesim starting")
}
