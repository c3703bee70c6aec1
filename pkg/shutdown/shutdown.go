// Package shutdown ties a context to process termination signals.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ErrSignal is the cancellation cause when a signal ends the context.
type ErrSignal struct {
	Signal os.Signal
}

func (e ErrSignal) Error() string { return fmt.Sprintf("received %s", e.Signal) }

// WithSignals returns a context cancelled on SIGINT or SIGTERM. The signal is
// available through context.Cause.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			cancel(ErrSignal{Signal: sig})
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}
