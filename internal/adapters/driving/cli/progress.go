package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// Ensure progressSink implements the interface.
var _ driven.NotificationSink = (*progressSink)(nil)

var (
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// progressSink renders embedding progress to the terminal and turns SIGINT
// into a cooperative cancel: the in-flight batch finishes and partial
// progress is persisted.
type progressSink struct {
	out       io.Writer
	styled    bool
	cancelled atomic.Bool
}

// newProgressSink creates a sink writing to out. Styling is enabled only
// when stdout is a terminal.
func newProgressSink(out io.Writer) *progressSink {
	return &progressSink{
		out:    out,
		styled: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// OnProgress implements driven.NotificationSink.
func (s *progressSink) OnProgress(completed, total int) {
	if total == 0 {
		return
	}

	percent := completed * 100 / total
	line := fmt.Sprintf("Embedding %d/%d (%d%%)", completed, total, percent)
	if s.styled {
		line = progressStyle.Render("Embedding ") +
			countStyle.Render(fmt.Sprintf("%d/%d (%d%%)", completed, total, percent))
		fmt.Fprintf(s.out, "\r%s", line)
		if completed == total {
			fmt.Fprintln(s.out)
		}
		return
	}

	// Plain output: one line per update would flood logs, so report every
	// tenth chunk and the final one.
	if completed%10 == 0 || completed == total {
		fmt.Fprintln(s.out, line)
	}
}

// ShouldCancel implements driven.NotificationSink.
func (s *progressSink) ShouldCancel() bool {
	return s.cancelled.Load()
}

// WaitIfPaused implements driven.NotificationSink. The CLI never pauses.
func (s *progressSink) WaitIfPaused(ctx context.Context) error {
	return ctx.Err()
}

// cancelOnInterrupt flips the sink's cancel flag on the first SIGINT and
// exits hard on the second. Returns a stop function for the handler.
func cancelOnInterrupt(sink *progressSink) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		for range sigCh {
			if sink.cancelled.Swap(true) {
				fmt.Fprintln(os.Stderr, "\nAborting")
				os.Exit(1)
			}
			fmt.Fprintln(os.Stderr, "\nCancelling: finishing the current batch, progress will be saved")
		}
	}()

	return func() { signal.Stop(sigCh) }
}
