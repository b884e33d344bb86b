package mpsc

import (
	"sync/atomic"

	"github.com/Iron-Ham/mpsc/internal/event"
)

// shared is the reference-counted cell every handle of one channel points
// to. refs counts live handles, not messages; the queue is released when it
// drops to zero.
type shared[T any] struct {
	q    *queue[T]
	refs atomic.Int64
	opts *options
}

func newShared[T any](store storage[T], opts *options) *shared[T] {
	c := &shared[T]{
		q:    newQueue(store, opts.freelistLimit),
		opts: opts,
	}
	c.refs.Store(1)
	return c
}

// clone takes another reference to the cell.
func (c *shared[T]) clone() *shared[T] {
	c.refs.Add(1)
	return c
}

// drop releases one reference. The last drop releases the queue storage.
func (c *shared[T]) drop() {
	refs := c.refs.Add(-1)
	if refs > 0 {
		return
	}
	if refs < 0 {
		panic("mpsc: channel reference count went negative")
	}

	discarded := c.q.release()
	c.opts.logger.Debug("channel released", "discarded", discarded)
	if c.opts.bus != nil {
		c.opts.bus.Publish(event.NewChannelReleasedEvent(c.opts.name, discarded))
	}
}

// report logs and publishes a state transition. It must be called after the
// queue lock is released.
func (c *shared[T]) report(tr transition) {
	if !tr.changed() {
		return
	}

	msg := "channel state changed"
	if tr.reopened() {
		msg = "channel reopened"
	}
	c.opts.logger.Debug(msg,
		"from", tr.from.String(),
		"to", tr.to.String(),
		"senders", tr.senders,
		"receivers", tr.receivers,
		"buffered", tr.buffered)

	c.opts.observer.ObserveState(tr.from, tr.to)
	if c.opts.bus != nil {
		c.opts.bus.Publish(event.NewChannelStateEvent(
			c.opts.name, tr.from.String(), tr.to.String(),
			tr.senders, tr.receivers, tr.buffered))
	}
}

// reportMisuse logs and publishes a second-receiver attach.
func (c *shared[T]) reportMisuse(tr transition, refused bool) {
	c.opts.logger.Warn("multiple receivers attached to channel",
		"receivers", tr.receivers,
		"refused", refused)
	if c.opts.bus != nil {
		c.opts.bus.Publish(event.NewReceiverMisuseEvent(c.opts.name, tr.receivers, refused))
	}
}

// stats returns a snapshot of the channel.
func (c *shared[T]) stats() Stats {
	s := c.q.stats()
	s.Name = c.opts.name
	s.Refs = c.refs.Load()
	return s
}

// Stats is a point-in-time snapshot of a channel.
type Stats struct {
	Name      string
	State     State
	Senders   int
	Receivers int
	Buffered  int
	Pooled    int
	Refs      int64
}
