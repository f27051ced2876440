package runner

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/hupe1980/agentbridge/event"
)

// Token is the cancellation flag shared between the signal handler and the
// streaming consumption loops. It starts false and only ever flips to true;
// cancellation stops observation of the backend stream, it does not abort the
// backend's in-flight request.
type Token struct {
	flag atomic.Bool
}

// NewToken returns an unset Token.
func NewToken() *Token { return &Token{} }

// Cancel flips the token.
func (t *Token) Cancel() { t.flag.Store(true) }

// Cancelled reports whether the token has been flipped.
func (t *Token) Cancelled() bool { return t.flag.Load() }

// Install wires SIGTERM and SIGINT to the token: either signal flips it and
// immediately emits a cancelled event through em. The returned func releases
// the signal registration.
func (t *Token) Install(em *event.Emitter) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)

	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				t.Cancel()
				em.Emit(event.TypeCancelled, "Task cancelled by signal", nil)
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
