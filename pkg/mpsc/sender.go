package mpsc

import (
	"sync/atomic"
)

// Sender is the producing half of a channel. Any number of senders may be
// live at once; Clone one per producing goroutine. A Sender's methods are
// safe for concurrent use, but Close must be called exactly once per handle.
type Sender[T any] struct {
	cell   *shared[T]
	closed atomic.Bool
}

// Send enqueues v. It never blocks on capacity. It returns ErrDisconnected
// without buffering v when no receiver is attached, and ErrHandleClosed if
// this sender was closed.
func (s *Sender[T]) Send(v T) error {
	if s.closed.Load() {
		return ErrHandleClosed
	}
	err := s.cell.q.push(v)
	s.cell.opts.observer.ObserveSend(err)
	return err
}

// Clone returns an independent sender for the same channel.
func (s *Sender[T]) Clone() (*Sender[T], error) {
	if s.closed.Load() {
		return nil, ErrHandleClosed
	}
	return newSender(s.cell.clone()), nil
}

// NewReceiver attaches a receiver to this sender's channel. It reopens a
// channel whose receivers were all closed. Attaching while another receiver
// is live is misuse: it is reported and, with WithStrictReceiver, refused.
func (s *Sender[T]) NewReceiver() (*Receiver[T], error) {
	if s.closed.Load() {
		return nil, ErrHandleClosed
	}
	return newReceiver(s.cell.clone(), "new_receiver")
}

// Close detaches this sender. Closing the last sender wakes a blocked
// receiver, which drains any buffered messages before seeing
// ErrDisconnected. Closing twice returns ErrHandleClosed.
func (s *Sender[T]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrHandleClosed
	}
	tr := s.cell.q.detachSender()
	s.cell.report(tr)
	s.cell.drop()
	return nil
}

// State returns the channel's current state.
func (s *Sender[T]) State() State {
	return s.cell.q.stats().State
}

// Stats returns a snapshot of the channel.
func (s *Sender[T]) Stats() Stats {
	return s.cell.stats()
}
