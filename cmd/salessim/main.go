package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/logging"
	"github.com/bankops/salessim/pkg/model"
	"github.com/bankops/salessim/pkg/simulation"
	"github.com/bankops/salessim/pkg/storage"
)

// Version information - set via ldflags during build
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		configPath  string
		outputDir   string
		dbPath      string
		seed        int64
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to YAML configuration (defaults apply when empty)")
	flag.StringVar(&outputDir, "output", "", "override output directory")
	flag.StringVar(&dbPath, "db", "", "override sqlite database path")
	flag.Int64Var(&seed, "seed", 0, "override simulation seed (0 keeps the configured seed)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("salessim %s (%s)\n", version, commit)
		return
	}

	if err := run(configPath, outputDir, dbPath, seed); err != nil {
		fmt.Fprintf(os.Stderr, "salessim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir, dbPath string, seed int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if dbPath != "" {
		cfg.Output.DBPath = dbPath
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := simulation.NewRunID()

	logger, err := logging.NewLogger(cfg.Output.LogDir, runID)
	if err != nil {
		return err
	}
	defer logger.Close()

	client, err := model.NewClient(cfg)
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.Output.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := simulation.NewRunner(cfg, client, store, logger)
	result, err := runner.Run(ctx, runID)
	if err != nil {
		return err
	}

	path, err := result.WriteJSON(cfg.Output.Dir)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished: %d pairings, results at %s\n", runID, len(result.Pairings), path)
	for _, p := range result.Pairings {
		matched := "-"
		if p.Record.MatchedProduct != nil {
			matched = string(*p.Record.MatchedProduct)
		}
		fmt.Printf("  %s -> %s: %s (stage %s, rounds %d, product %s)\n",
			p.Sales.Name, p.Company.Name, p.Record.Status, p.Record.Stage, p.Record.Round, matched)
	}
	return nil
}
