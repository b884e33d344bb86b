package mpsc

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/mpsc/internal/errors"
)

// queue is the mailbox shared by every handle of one channel: an unbounded
// FIFO list of nodes, a freelist of retired nodes, and the sender/receiver
// liveness counts. All fields are guarded by mu.
//
// Waiting uses a notify channel instead of sync.Cond so that waits can be
// bounded by a timer or a context. notify closes the current channel and
// installs a fresh one; a waiter captures the channel before unlocking and
// rechecks its predicate after every wakeup.
type queue[T any] struct {
	mu      sync.Mutex
	wake    chan struct{}
	waiters int

	head   *node[T]
	tail   *node[T]
	length int
	free   freelist[T]
	store  storage[T]

	senders   int
	receivers int
	state     State
	released  bool
}

func newQueue[T any](store storage[T], freelistLimit int) *queue[T] {
	return &queue[T]{
		wake:  make(chan struct{}),
		free:  freelist[T]{limit: freelistLimit},
		store: store,
		state: StateBothGone,
	}
}

// notify wakes every goroutine currently waiting on the queue. It is a no-op
// when nobody waits, so the hot path does not allocate. Caller holds mu.
func (q *queue[T]) notify() {
	if q.waiters == 0 {
		return
	}
	close(q.wake)
	q.wake = make(chan struct{})
	q.waiters = 0
}

// push appends v at the tail. The closed check and the enqueue happen under
// the same lock, so a send racing with the last receiver's Close is either
// buffered before the close or rejected, never buffered after it.
func (q *queue[T]) push(v T) error {
	q.mu.Lock()
	if q.state.Closed() {
		q.mu.Unlock()
		return errors.ErrDisconnected
	}

	n := q.free.get()
	q.store.store(&n.value, v)
	if q.tail != nil {
		q.tail.next = n
	} else {
		q.head = n
	}
	q.tail = n
	q.length++

	q.notify()
	q.mu.Unlock()
	return nil
}

// unlink removes the head node, copies its value out and retires the node
// to the freelist. Caller holds mu and has checked head != nil.
func (q *queue[T]) unlink() T {
	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.length--

	v := q.store.load(&n.value)
	n.next = nil
	q.store.reset(&n.value)
	q.free.put(n)
	return v
}

// pop dequeues the next message according to mode.
//
//   - RecvTry never waits: ErrEmpty when nothing is buffered.
//   - RecvBlocking waits until a message arrives or the channel closes.
//   - RecvTimeout waits until timer fires (ErrTimedOut).
//   - RecvContext waits until ctx is done (ctx.Err()).
//
// In every mode a closed-and-drained channel reports ErrDisconnected.
func (q *queue[T]) pop(mode RecvMode, timer <-chan time.Time, ctx context.Context) (T, error) {
	var zero T
	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	q.mu.Lock()
	for q.head == nil {
		if q.state.Closed() {
			q.mu.Unlock()
			return zero, errors.ErrDisconnected
		}
		if mode == RecvTry {
			q.mu.Unlock()
			return zero, errors.ErrEmpty
		}

		wake := q.wake
		q.waiters++
		q.mu.Unlock()

		var expired error
		select {
		case <-wake:
		case <-timer:
			expired = errors.ErrTimedOut
		case <-done:
			expired = ctx.Err()
		}

		q.mu.Lock()
		if expired == nil {
			continue
		}
		if q.wake == wake {
			q.waiters--
		}
		if q.head != nil {
			break
		}
		if q.state.Closed() {
			q.mu.Unlock()
			return zero, errors.ErrDisconnected
		}
		q.mu.Unlock()
		return zero, expired
	}

	v := q.unlink()
	q.notify()
	q.mu.Unlock()
	return v, nil
}

// snapshot returns the current transition baseline. Caller holds mu.
func (q *queue[T]) snapshot(from State) transition {
	return transition{
		from:      from,
		to:        q.state,
		senders:   q.senders,
		receivers: q.receivers,
		buffered:  q.length,
	}
}

// attachSender registers a new live sender.
func (q *queue[T]) attachSender() transition {
	q.mu.Lock()
	defer q.mu.Unlock()

	from := q.state
	q.senders++
	q.state = stateOf(q.senders, q.receivers)
	return q.snapshot(from)
}

// attachReceiver registers a new live receiver. misuse reports that another
// receiver was already live; with strict set the attach is refused instead.
func (q *queue[T]) attachReceiver(strict bool) (tr transition, misuse bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	from := q.state
	if q.receivers > 0 {
		misuse = true
		if strict {
			return q.snapshot(from), true, errors.ErrMultipleReceivers
		}
	}
	q.receivers++
	q.state = stateOf(q.senders, q.receivers)
	return q.snapshot(from), misuse, nil
}

// detachSender unregisters a sender. When the last sender leaves, waiting
// receivers are woken so they can drain and observe the closed state.
func (q *queue[T]) detachSender() transition {
	q.mu.Lock()
	defer q.mu.Unlock()

	from := q.state
	q.senders--
	if q.senders == 0 {
		q.notify()
	}
	q.state = stateOf(q.senders, q.receivers)
	return q.snapshot(from)
}

// detachReceiver unregisters a receiver, waking any other waiter when the
// last receiver leaves.
func (q *queue[T]) detachReceiver() transition {
	q.mu.Lock()
	defer q.mu.Unlock()

	from := q.state
	q.receivers--
	if q.receivers == 0 {
		q.notify()
	}
	q.state = stateOf(q.senders, q.receivers)
	return q.snapshot(from)
}

// release drops every node on the active list and the freelist. It returns
// the number of buffered messages that were never received.
func (q *queue[T]) release() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	discarded := q.length
	for n := q.head; n != nil; {
		next := n.next
		n.next = nil
		q.store.reset(&n.value)
		n = next
	}
	q.head = nil
	q.tail = nil
	q.length = 0
	q.free.clear()
	q.released = true
	q.notify()
	return discarded
}

// stats returns a consistent snapshot of the queue's counters.
func (q *queue[T]) stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		State:     q.state,
		Senders:   q.senders,
		Receivers: q.receivers,
		Buffered:  q.length,
		Pooled:    q.free.size,
	}
}
