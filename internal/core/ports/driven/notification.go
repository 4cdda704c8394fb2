package driven

import "context"

// NotificationSink receives progress updates from an index pass and carries
// the host's cancellation and pause signals back into the pipeline.
//
// Cancellation is cooperative and polled: the pipeline checks ShouldCancel
// between batches, finishes any in-flight batch, then stops. Pause is
// likewise cooperative: WaitIfPaused blocks before a batch starts until the
// host releases the pause or ctx is done.
type NotificationSink interface {
	// OnProgress reports completed out of total chunks embedded so far.
	OnProgress(completed, total int)

	// ShouldCancel returns true once the host has requested cancellation.
	ShouldCancel() bool

	// WaitIfPaused blocks while the host holds the pass paused.
	WaitIfPaused(ctx context.Context) error
}

// NopSink is a NotificationSink that ignores progress and never cancels
// or pauses. Useful for headless passes and tests.
type NopSink struct{}

// OnProgress implements NotificationSink.
func (NopSink) OnProgress(_, _ int) {}

// ShouldCancel implements NotificationSink.
func (NopSink) ShouldCancel() bool { return false }

// WaitIfPaused implements NotificationSink.
func (NopSink) WaitIfPaused(_ context.Context) error { return nil }
