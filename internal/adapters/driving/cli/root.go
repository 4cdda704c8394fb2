// Package cli implements the semidx command-line interface.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/semidx-cli/internal/adapters/driven/config/file"
	fssource "github.com/custodia-labs/semidx-cli/internal/adapters/driven/documents/fs"
	"github.com/custodia-labs/semidx-cli/internal/adapters/driven/embedding"
	"github.com/custodia-labs/semidx-cli/internal/adapters/driven/filestore/local"
	"github.com/custodia-labs/semidx-cli/internal/adapters/driven/storage/partition"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driving"
	"github.com/custodia-labs/semidx-cli/internal/core/services"
	"github.com/custodia-labs/semidx-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose    bool
	configPath string
	docsRoot   string
	indexBase  string
)

// Services wired by initServices. Commands that need them check for nil.
var (
	configSource   *configfile.Source
	docSource      *fssource.Source
	embeddingSvc   driven.EmbeddingService
	indexerService driving.Indexer
)

var rootCmd = &cobra.Command{
	Use:   "semidx",
	Short: "Local semantic index for a directory of documents",
	Long: `semidx chunks and embeds local documents into a partitioned
on-disk index that can be rebuilt, updated per document, or kept
current by watching the filesystem.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.semidx/config.toml)")
	rootCmd.PersistentFlags().StringVar(&docsRoot, "docs", ".", "documents root directory")
	rootCmd.PersistentFlags().StringVar(&indexBase, "index", "", "index base path (default <docs>/.semidx/records)")
}

// Execute runs the root command.
func Execute() error {
	defer teardownServices()
	return rootCmd.Execute()
}

// initServices wires the driven adapters and the core services. Commands
// that operate on the index call this before doing any work; version and
// help stay dependency-free.
func initServices() error {
	if indexerService != nil {
		return nil
	}

	cfg, err := configfile.NewSource(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configSource = cfg

	embSettings := cfg.Embedding()
	embedder, err := embedding.NewValidatedService(&embSettings)
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	embeddingSvc = embedder

	docSource = fssource.New(docsRoot)

	base := indexBase
	if base == "" {
		base = filepath.Join(docsRoot, ".semidx", "records")
	}
	store := partition.NewStore(local.New(), base,
		partition.WithMaxPartitionBytes(cfg.Settings().MaxPartitionBytes))

	pipeline := services.NewIndexingPipeline(docSource, embedder, cfg)
	indexerService = services.NewIndexer(pipeline, docSource, store)
	return nil
}

// teardownServices releases anything initServices opened.
func teardownServices() {
	if embeddingSvc != nil {
		if err := embeddingSvc.Close(); err != nil {
			logger.Debug("Closing embedding service: %v", err)
		}
		embeddingSvc = nil
	}
	if configSource != nil {
		if err := configSource.Close(); err != nil {
			logger.Debug("Closing config source: %v", err)
		}
		configSource = nil
	}
}
