package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// InterruptHandler turns Ctrl+C during a long command into a canceled
// context and tells the user how to pick up the saved transaction.
type InterruptHandler struct {
	out         io.Writer
	hint        atomic.Value
	interrupted atomic.Bool
	announce    sync.Once
}

// NewInterruptHandler reports interrupts on out, or stdout when nil.
func NewInterruptHandler(out io.Writer) *InterruptHandler {
	if out == nil {
		out = os.Stdout
	}
	return &InterruptHandler{out: out}
}

// HandleInterrupts derives a context that SIGINT or SIGTERM cancels. The
// returned stop releases the signal and cancels the context without
// counting as an interrupt.
func (h *InterruptHandler) HandleInterrupts(parent context.Context) (context.Context, func()) {
	sigCtx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(parent)

	go func() {
		<-sigCtx.Done()
		if parent.Err() == nil && ctx.Err() == nil {
			h.interrupt(cancel)
		}
	}()

	return ctx, func() {
		cancel()
		stopSignals()
	}
}

// SetResumeHint names the command that reopens the work saved so far.
func (h *InterruptHandler) SetResumeHint(hint string) {
	h.hint.Store(hint)
}

// WasInterrupted reports whether a signal canceled the command.
func (h *InterruptHandler) WasInterrupted() bool {
	return h.interrupted.Load()
}

func (h *InterruptHandler) interrupt(cancel context.CancelFunc) {
	h.interrupted.Store(true)
	h.announce.Do(func() {
		fmt.Fprint(h.out, h.message())
	})
	cancel()
}

func (h *InterruptHandler) message() string {
	msg := "\n\n" + FormatWarning("Interrupted!")
	if hint, _ := h.hint.Load().(string); hint != "" {
		msg += "\n" + FormatInfo("Saved work can be resumed with: "+hint)
	}
	return msg + "\n"
}
