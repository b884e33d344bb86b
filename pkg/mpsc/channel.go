package mpsc

import (
	"github.com/Iron-Ham/mpsc/internal/errors"
	"github.com/Iron-Ham/mpsc/internal/event"
)

// Open creates a channel carrying values of type T and returns its first
// Sender and Receiver. Values are copied into the channel on Send; for
// pointer-bearing types only the top-level value is copied.
func Open[T any](opts ...Option) (*Sender[T], *Receiver[T]) {
	return open[T](valueStorage[T]{}, newOptions(opts))
}

func open[T any](store storage[T], o *options) (*Sender[T], *Receiver[T]) {
	cell := newShared(store, o)
	_, _, _ = cell.q.attachReceiver(false)
	cell.q.attachSender()

	rx := &Receiver[T]{cell: cell.clone()}
	tx := &Sender[T]{cell: cell}

	o.logger.Debug("channel opened", "freelist_limit", o.freelistLimit, "strict_receiver", o.strictReceiver)
	if o.bus != nil {
		o.bus.Publish(event.NewChannelOpenedEvent(o.name))
	}
	return tx, rx
}

// newSender attaches a sender to cell, which must already hold a reference
// for it.
func newSender[T any](cell *shared[T]) *Sender[T] {
	tr := cell.q.attachSender()
	cell.report(tr)
	return &Sender[T]{cell: cell}
}

// newReceiver attaches a receiver to cell, which must already hold a
// reference for it. On refusal the reference is dropped.
func newReceiver[T any](cell *shared[T], op string) (*Receiver[T], error) {
	tr, misuse, err := cell.q.attachReceiver(cell.opts.strictReceiver)
	if misuse {
		cell.reportMisuse(tr, err != nil)
	}
	if err != nil {
		cell.drop()
		return nil, errors.NewChannelError("attach receiver", err).
			WithChannel(cell.opts.name).
			WithOp(op).
			WithSeverity(errors.SeverityWarning)
	}
	cell.report(tr)
	return &Receiver[T]{cell: cell}, nil
}

// ResultString returns the short result code for a send or receive error:
// "OK" for nil, "CLOSED", "EMPTY", "TIMEOUT", or "ERROR" for anything else.
func ResultString(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrDisconnected):
		return "CLOSED"
	case errors.Is(err, ErrEmpty):
		return "EMPTY"
	case errors.Is(err, ErrTimedOut):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// Result sentinels, re-exported so callers need not import internal packages.
var (
	ErrDisconnected      = errors.ErrDisconnected
	ErrEmpty             = errors.ErrEmpty
	ErrTimedOut          = errors.ErrTimedOut
	ErrHandleClosed      = errors.ErrHandleClosed
	ErrMultipleReceivers = errors.ErrMultipleReceivers
	ErrSizeMismatch      = errors.ErrSizeMismatch
)
