// Command transport cleans the transport spreadsheet: it reads
// paths.raw_data, applies the configured transformations and writes CSV to
// paths.output_data (plus any extra sinks).
//
// The config path comes from ETL_CONFIG and defaults to config.yaml.
// A .env file in the working directory is loaded first so ${VAR}
// references in the config resolve.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tabetl/internal/config"
	"tabetl/internal/logging"
	"tabetl/internal/pipeline"

	// register all sink backends with the storage factory.
	_ "tabetl/internal/storage/all"
)

const defaultConfig = "config.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnvFiles(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "transport: %v\n", err)
		return 1
	}
	cfgPath := os.Getenv("ETL_CONFIG")
	if cfgPath == "" {
		cfgPath = defaultConfig
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transport: %v\n", err)
		return 1
	}

	log, err := logging.New(os.Stderr, cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transport: %v\n", err)
		return 1
	}

	issues := config.ValidateTransport(cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			log.Warn("config warning", "path", iss.Path, "message", iss.Message)
		}
	}
	if err := config.Check(cfgPath, issues); err != nil {
		log.Error("invalid configuration", "stage", "config", "error", err)
		return 1
	}

	flush, err := pipeline.SetupMetrics(cfg.Metrics, "transport", log)
	if err != nil {
		log.Error("metrics setup failed", "error", err)
		return 1
	}
	defer flush()

	rep := pipeline.New(cfg, "transport", pipeline.WithLogger(log)).RunTransport(ctx)
	if rep.Failed() {
		return 1
	}
	return 0
}
