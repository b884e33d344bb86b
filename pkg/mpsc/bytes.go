package mpsc

import (
	"context"
	"time"

	"github.com/Iron-Ham/mpsc/internal/errors"
)

// OpenBytes creates a channel of opaque payloads of exactly size bytes.
// Payloads are copied on Send and again on receive, so callers may reuse
// their buffers immediately.
func OpenBytes(size int, opts ...Option) (*ByteSender, *ByteReceiver, error) {
	if size <= 0 {
		return nil, nil, errors.NewValidationError("message size must be positive").
			WithField("size").
			WithValue(size)
	}
	tx, rx := open[[]byte](byteStorage{size: size}, newOptions(opts))
	return &ByteSender{tx: tx, size: size}, &ByteReceiver{rx: rx, size: size}, nil
}

// ByteSender is the producing half of a fixed-size byte channel.
type ByteSender struct {
	tx   *Sender[[]byte]
	size int
}

// Send copies p into the channel. A payload whose length is not Size is
// rejected with a ValidationError wrapping ErrSizeMismatch.
func (s *ByteSender) Send(p []byte) error {
	if len(p) != s.size {
		err := errors.NewValidationError("payload length does not match channel message size").
			WithField("payload").
			WithValue(len(p)).
			WithCause(ErrSizeMismatch)
		s.tx.cell.opts.logger.Warn("rejected payload", "want", s.size, "got", len(p))
		s.tx.cell.opts.observer.ObserveSend(err)
		return err
	}
	return s.tx.Send(p)
}

// Clone returns an independent sender for the same channel.
func (s *ByteSender) Clone() (*ByteSender, error) {
	tx, err := s.tx.Clone()
	if err != nil {
		return nil, err
	}
	return &ByteSender{tx: tx, size: s.size}, nil
}

// NewReceiver attaches a receiver; see Sender.NewReceiver.
func (s *ByteSender) NewReceiver() (*ByteReceiver, error) {
	rx, err := s.tx.NewReceiver()
	if err != nil {
		return nil, err
	}
	return &ByteReceiver{rx: rx, size: s.size}, nil
}

func (s *ByteSender) Close() error { return s.tx.Close() }
func (s *ByteSender) Size() int    { return s.size }
func (s *ByteSender) State() State { return s.tx.State() }
func (s *ByteSender) Stats() Stats { return s.tx.Stats() }

// ByteReceiver is the consuming half of a fixed-size byte channel. Every
// payload it returns is a fresh slice of length Size.
type ByteReceiver struct {
	rx   *Receiver[[]byte]
	size int
}

func (r *ByteReceiver) Recv() ([]byte, error)    { return r.rx.Recv() }
func (r *ByteReceiver) TryRecv() ([]byte, error) { return r.rx.TryRecv() }

func (r *ByteReceiver) RecvTimeout(d time.Duration) ([]byte, error) {
	return r.rx.RecvTimeout(d)
}

func (r *ByteReceiver) RecvContext(ctx context.Context) ([]byte, error) {
	return r.rx.RecvContext(ctx)
}

// NewSender attaches a sender; see Receiver.NewSender.
func (r *ByteReceiver) NewSender() (*ByteSender, error) {
	tx, err := r.rx.NewSender()
	if err != nil {
		return nil, err
	}
	return &ByteSender{tx: tx, size: r.size}, nil
}

func (r *ByteReceiver) Close() error { return r.rx.Close() }
func (r *ByteReceiver) Len() int     { return r.rx.Len() }
func (r *ByteReceiver) Size() int    { return r.size }
func (r *ByteReceiver) State() State { return r.rx.State() }
func (r *ByteReceiver) Stats() Stats { return r.rx.Stats() }
