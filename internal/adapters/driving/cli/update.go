package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <path>",
	Short: "Re-index a single document",
	Long: `Re-chunks and re-embeds one document, replacing its records in the
index without touching any other document. The path is relative to the
documents root. A document that no longer exists is removed from the
index.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if indexerService == nil {
		return errors.New("index service not configured")
	}

	path := args[0]
	sink := newProgressSink(cmd.OutOrStdout())
	stop := cancelOnInterrupt(sink)
	defer stop()

	if err := indexerService.UpdateDocument(context.Background(), path, sink); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	cmd.Printf("Updated %s.\n", path)
	return nil
}
