package driven

import (
	"context"
	"runtime"
)

// Yielder hands control back to the host scheduler during long bulk
// operations. In an embedded single-threaded host this keeps the UI
// responsive; in a CLI it is effectively free.
//
// Yield is an immediate reschedule, not a timed sleep.
type Yielder interface {
	Yield(ctx context.Context) error
}

// YieldFunc adapts a function to the Yielder interface.
type YieldFunc func(ctx context.Context) error

// Yield implements Yielder.
func (f YieldFunc) Yield(ctx context.Context) error { return f(ctx) }

// NopYielder never yields. Suitable for batch/CLI contexts where no other
// work competes for the scheduler.
var NopYielder Yielder = YieldFunc(func(_ context.Context) error { return nil })

// GoschedYielder yields the processor and honours context cancellation.
var GoschedYielder Yielder = YieldFunc(func(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runtime.Gosched()
	return nil
})
