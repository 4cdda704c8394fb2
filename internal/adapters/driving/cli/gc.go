package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Drop index records for documents that no longer exist",
	RunE:  runGC,
}

func init() {
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if indexerService == nil {
		return errors.New("index service not configured")
	}

	removed, err := indexerService.GarbageCollect(context.Background())
	if err != nil {
		return fmt.Errorf("garbage collect: %w", err)
	}
	if removed == 0 {
		cmd.Println("Index is clean, nothing to remove.")
		return nil
	}
	cmd.Printf("Removed %d stale documents from the index.\n", removed)
	return nil
}
