package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index from every document under the documents root",
	Long: `Chunks and embeds every supported document under the documents root
and rebuilds the persisted index. Interrupting with Ctrl-C finishes the
current batch and saves the progress made so far.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if indexerService == nil {
		return errors.New("index service not configured")
	}

	// Live config reload while a long pass runs.
	if err := configSource.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	sink := newProgressSink(cmd.OutOrStdout())
	stop := cancelOnInterrupt(sink)
	defer stop()

	cmd.Printf("Indexing documents under %s...\n", docSource.Root())
	if err := indexerService.Build(context.Background(), sink); err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	status, err := indexerService.Status(context.Background())
	if err == nil && status != nil {
		cmd.Printf("Indexed %d chunks (%d document errors).\n", status.Completed, status.Errors)
	}
	return nil
}
