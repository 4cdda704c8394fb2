package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted index",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if indexerService == nil {
		return errors.New("index service not configured")
	}

	if err := indexerService.Clear(context.Background()); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}
