package auth

import (
	"context"
	"sync"

	"github.com/funcraft/mcauth/internals/minecraft"
)

// Attempt is a Microsoft sign-in running in the background
type Attempt struct {
	// ID shows up as "attempt" in every log line of this attempt
	ID string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	result *minecraft.AuthResult
	err    error
}

// Start runs SignInMicrosoft on its own goroutine. onDeviceCode is called
// from that goroutine.
func (o *Orchestrator) Start(ctx context.Context, onDeviceCode DeviceCodeFunc) *Attempt {
	ctx, cancel := context.WithCancel(ctx)
	a := &Attempt{
		ID:     newAttemptID(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(a.done)
		defer cancel()
		a.result, a.err = o.signInMicrosoft(ctx, a.ID, onDeviceCode)
	}()
	return a
}

// Cancel stops the attempt. Wait then returns a Cancelled error unless the
// attempt already finished.
func (a *Attempt) Cancel() {
	a.once.Do(a.cancel)
}

// Done is closed once the attempt finished
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt finished and returns its outcome
func (a *Attempt) Wait() (*minecraft.AuthResult, error) {
	<-a.done
	return a.result, a.err
}
