package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index settings and the state of the last pass",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if indexerService == nil {
		return errors.New("index service not configured")
	}

	settings := configSource.Settings()
	embeddingCfg := configSource.Embedding()

	cmd.Printf("Documents root:  %s\n", docSource.Root())
	cmd.Printf("Config file:     %s\n", configSource.Path())
	cmd.Printf("Provider:        %s (model %s, %d dimensions)\n",
		embeddingCfg.Provider, embeddingSvc.ModelName(), embeddingSvc.Dimensions())
	cmd.Printf("Batch size:      %d\n", settings.BatchSize)
	cmd.Printf("Rate limit:      %d requests/minute\n", settings.RequestsPerMinute)
	cmd.Printf("Chunking:        %d runes, %d overlap\n", settings.ChunkSize, settings.ChunkOverlap)

	status, err := indexerService.Status(context.Background())
	if err != nil {
		return fmt.Errorf("index status: %w", err)
	}
	if status.RunID == "" {
		cmd.Println("Last pass:       none")
		return nil
	}
	state := "complete"
	if status.Running {
		state = "running"
	}
	cmd.Printf("Last pass:       %s (%s, %d/%d chunks, %d errors)\n",
		status.RunID, state, status.Completed, status.Total, status.Errors)
	return nil
}
