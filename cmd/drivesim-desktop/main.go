package main

import (
	"flag"
	"os"

	"drivesim/config"
	"drivesim/desktop"
	"drivesim/logging"
	"drivesim/telemetry"
)

func main() {
	variant := flag.String("variant", "", "variant to drive (default from "+config.EnvVariant+")")
	flag.Parse()

	boot := logging.New(logging.Config{})
	if _, err := config.InitConfig(); err != nil {
		boot.Fatal().Err(err).Msg("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if *variant != "" {
		cfg.Variant = *variant
	}
	variants, err := config.LoadVariants(cfg.VariantsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.VariantsFile).Msg("variants")
	}
	v, ok := variants[cfg.Variant]
	if !ok {
		log.Fatal().Str("variant", cfg.Variant).Msg("unknown variant")
	}
	metrics, err := telemetry.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry")
	}

	log.Info().Str("variant", v.Name).Msg("opening window")
	if err := desktop.Run(desktop.Options{
		Variant: v,
		Policy:  cfg.DevicePolicy(),
		TPS:     desktop.DefaultTPS,
		Log:     log,
		Metrics: metrics,
	}); err != nil {
		log.Error().Err(err).Msg("window")
		os.Exit(1)
	}
}
