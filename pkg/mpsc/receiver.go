package mpsc

import (
	"context"
	"sync/atomic"
	"time"
)

// Receiver is the consuming half of a channel. A channel is designed for a
// single live receiver; see Sender.NewReceiver for the misuse policy.
type Receiver[T any] struct {
	cell   *shared[T]
	closed atomic.Bool
}

// Recv blocks until a message is available and returns it. Once every
// sender is closed it keeps returning buffered messages, then
// ErrDisconnected.
func (r *Receiver[T]) Recv() (T, error) {
	return r.recv(RecvBlocking, nil, nil)
}

// TryRecv returns the next message without waiting. It returns ErrEmpty if
// nothing is buffered on an open channel and ErrDisconnected if the channel
// is closed and drained.
func (r *Receiver[T]) TryRecv() (T, error) {
	return r.recv(RecvTry, nil, nil)
}

// RecvTimeout waits at most d for a message. It returns ErrTimedOut if none
// arrived in time, or ErrDisconnected if the channel is or becomes closed
// and drained. A non-positive d polls once.
func (r *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	if d <= 0 {
		v, err := r.recv(RecvTry, nil, nil)
		if err == ErrEmpty {
			err = ErrTimedOut
		}
		return v, err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	return r.recv(RecvTimeout, timer.C, nil)
}

// RecvContext waits for a message until ctx is done, returning ctx.Err()
// in that case.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	return r.recv(RecvContext, nil, ctx)
}

func (r *Receiver[T]) recv(mode RecvMode, timer <-chan time.Time, ctx context.Context) (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrHandleClosed
	}
	v, err := r.cell.q.pop(mode, timer, ctx)
	r.cell.opts.observer.ObserveRecv(mode, err)
	return v, err
}

// Len returns the number of buffered messages.
func (r *Receiver[T]) Len() int {
	return r.cell.q.stats().Buffered
}

// NewSender attaches a sender to this receiver's channel, reopening it if
// every previous sender was closed.
func (r *Receiver[T]) NewSender() (*Sender[T], error) {
	if r.closed.Load() {
		return nil, ErrHandleClosed
	}
	return newSender(r.cell.clone()), nil
}

// Clone attaches another receiver to the same channel. Two live receivers
// is misuse; it is reported and, with WithStrictReceiver, refused.
func (r *Receiver[T]) Clone() (*Receiver[T], error) {
	if r.closed.Load() {
		return nil, ErrHandleClosed
	}
	return newReceiver(r.cell.clone(), "clone_receiver")
}

// Close detaches this receiver. Once no receiver is attached, sends fail
// with ErrDisconnected. Closing twice returns ErrHandleClosed.
func (r *Receiver[T]) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrHandleClosed
	}
	tr := r.cell.q.detachReceiver()
	r.cell.report(tr)
	r.cell.drop()
	return nil
}

// State returns the channel's current state.
func (r *Receiver[T]) State() State {
	return r.cell.q.stats().State
}

// Stats returns a snapshot of the channel.
func (r *Receiver[T]) Stats() Stats {
	return r.cell.stats()
}
