// ============================================================================
// rdfpack CLI — Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: User-friendly command line interface based on the Cobra
// framework, following the teacher's BuildCLI/buildXCommand structure.
//
// Command Structure:
//   rdfpack                        # Root command
//   ├── prepare                    # Run the Reader -> Packer -> Writer pipeline
//   │   └── --config, -c          # Specify config file
//   ├── publish                    # Submit written batch files to the ledger
//   │   └── --config, -c          # Specify config file
//   ├── status                     # Print the effective configuration
//   ├── --version                  # Display version information
//   └── --help                     # Display help information
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml).
//   Configuration sections: reader, packer, output, publish, metrics.
//
// prepare Command:
//   Runs the full packing pipeline to completion:
//   1. Load config file
//   2. Build internal/pipeline.Pipeline from it
//   3. Start Metrics HTTP server (if enabled)
//   4. Listen for SIGINT/SIGTERM and cancel the pipeline's token
//   5. Report the first fatal error, if any
//
//   Examples:
//     ./rdfpack prepare -- a.nt b.ttl
//     ./rdfpack prepare -c custom-config.yaml -- dataset.nq
//
// publish Command:
//   Reads the output directory's batch files (oldest first, by the
//   prepared.NNNNNN.rdfb naming) and submits each through the Publisher.
//
//   Examples:
//     ./rdfpack publish
//
// status Command:
//   Prints the effective configuration (after defaults) as YAML.
//
// Signal Handling:
//   prepare captures SIGINT/SIGTERM and cancels the pipeline's
//   cancellation token, letting every stage wind down in place rather
//   than being killed mid-write.
//
// Metrics Service:
//   If enabled in config, starts the /metrics HTTP endpoint in a
//   separate goroutine (default port 9090).
// ============================================================================

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/asimov-platform/rdf-dataset-packer/internal/config"
	"github.com/asimov-platform/rdf-dataset-packer/internal/metrics"
	"github.com/asimov-platform/rdf-dataset-packer/internal/packer"
	"github.com/asimov-platform/rdf-dataset-packer/internal/pipeline"
	"github.com/asimov-platform/rdf-dataset-packer/internal/publisher"
	"github.com/asimov-platform/rdf-dataset-packer/internal/rdfio"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

var configFile string

// BuildCLI assembles the rdfpack root command and its subcommands.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rdfpack",
		Short: "rdfpack: an adaptive RDF batch-packing pipeline",
		Long: `rdfpack reads RDF statements from one or more files, adaptively
packs them into size-capped binary batches, and writes them to disk —
optionally publishing each batch to a remote ledger afterward.`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildPrepareCommand())
	rootCmd.AddCommand(buildPublishCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func loadConfig() (config.Config, error) {
	if _, err := os.Stat(configFile); err != nil {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

func buildPrepareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare [paths...]",
		Short: "Pack one or more RDF input files into size-capped batches",
		Long:  "Run the Reader -> Packer pool -> Writer pipeline against the given input paths.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(args)
		},
	}
	return cmd
}

func runPrepare(paths []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.Default()
	logger.Info("starting prepare", "config", configFile, "inputs", len(paths))

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		go func() {
			logger.Info("starting metrics server", "port", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var metricsRecorder packer.MetricsRecorder
	if collector != nil {
		metricsRecorder = collector
	}

	pl := pipeline.New(pipeline.Config{
		Paths:       paths,
		OutputDir:   cfg.Output.Dir,
		PackerCount: cfg.Packer.Count,
		ReaderBatch: cfg.Reader.BatchSize,
		Packer: packer.Config{
			MaxBytes:        rdfio.MaxBytes,
			AcceptableRatio: cfg.Packer.AcceptableRatio,
		},
		Metrics: metricsRecorder,
		Logger:  logger,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling pipeline")
		pl.Cancel.Cancel()
	}()

	files := make(chan types.OutputFile, 16)
	go func() {
		for f := range files {
			logger.Info("prepared batch", "path", f.Path, "statements", f.StatementCount)
		}
	}()

	if err := pl.Run(files); err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}

	logger.Info("prepare finished")
	return nil
}

func buildPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Submit written batch files to the remote ledger",
		Long:  "Read the output directory's batch files and submit each through the Publisher.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish()
		},
	}
	return cmd
}

func runPublish() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Publish.Enabled {
		return fmt.Errorf("publish is not enabled in %s (set publish.enabled: true)", configFile)
	}

	logger := slog.Default()
	logger.Info("starting publish", "config", configFile, "dir", cfg.Output.Dir)

	entries, err := os.ReadDir(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to read output dir: %w", err)
	}

	in := make(chan types.OutputFile, len(entries)+1)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		in <- types.OutputFile{Path: cfg.Output.Dir + "/" + e.Name()}
	}
	close(in)

	client, err := newLedgerClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to build ledger client: %w", err)
	}

	pub := &publisher.Publisher{
		Config: publisher.Config{
			AccountID:     cfg.Publish.AccountID,
			ContractID:    cfg.Publish.ContractID,
			DatasetName:   cfg.Publish.DatasetName,
			RatePerSecond: cfg.Publish.RatePerSecond,
			Burst:         cfg.Publish.Burst,
		},
		Client: client,
		In:     in,
		Logger: logger.With("stage", "publisher"),
	}

	if err := pub.Run(context.Background()); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	logger.Info("publish finished")
	return nil
}

// newLedgerClient is the seam an operator's real NEAR-style RPC client
// plugs into via publisher.LedgerClient. No such client ships in this
// repo (spec.md §1 places the remote ledger out of scope), so it returns
// an error and no client, and publish fails instead of silently no-oping.
func newLedgerClient(cfg config.Config) (publisher.LedgerClient, error) {
	return nil, fmt.Errorf("no LedgerClient configured for account %q; wire one in before calling publish", cfg.Publish.AccountID)
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
	return cmd
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Printf("config file: %s\n%s", configFile, out)
	return nil
}
