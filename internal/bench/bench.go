// Package bench drives a byte channel with many concurrent producers and a
// single consumer, verifying per-producer ordering and fan-in cardinality
// while measuring throughput.
package bench

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/mpsc/internal/errors"
	"github.com/Iron-Ham/mpsc/internal/logging"
	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

// headerSize is the prefix of every payload: producer id then sequence number.
const headerSize = 16

// Options configures a benchmark run.
type Options struct {
	Producers   int
	Messages    int // per producer
	PayloadSize int
	RecvTimeout time.Duration

	// Channel options applied when the channel is opened.
	Channel []mpsc.Option
	Logger  *logging.Logger
}

// Progress is a point-in-time view of a running benchmark.
type Progress struct {
	Sent     int64
	Received int64
	Total    int64
	Elapsed  time.Duration
}

// Fraction returns Received/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Received) / float64(p.Total)
}

// Report summarises a finished run.
type Report struct {
	Producers   int
	Messages    int
	PayloadSize int

	Sent       int64
	Received   int64
	OutOfOrder int64
	Malformed  int64
	Duration   time.Duration

	// Final is the channel snapshot taken after every producer closed.
	Final mpsc.Stats
}

// Expected is the number of messages a clean run delivers.
func (r *Report) Expected() int64 {
	return int64(r.Producers) * int64(r.Messages)
}

// OK reports whether every message arrived exactly once and in order.
func (r *Report) OK() bool {
	return r.Received == r.Expected() && r.Sent == r.Expected() &&
		r.OutOfOrder == 0 && r.Malformed == 0
}

// Throughput returns received messages per second.
func (r *Report) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Received) / r.Duration.Seconds()
}

// Runner executes one benchmark. Progress may be polled from any goroutine
// while Run is in flight.
type Runner struct {
	opts Options

	sent     atomic.Int64
	received atomic.Int64
	started  atomic.Int64 // unix nanos
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	switch {
	case opts.Producers < 1:
		return nil, errors.NewValidationError("at least one producer is required").
			WithField("producers").WithValue(opts.Producers)
	case opts.Messages < 1:
		return nil, errors.NewValidationError("messages per producer must be positive").
			WithField("messages").WithValue(opts.Messages)
	case opts.PayloadSize < headerSize:
		return nil, errors.NewValidationError(fmt.Sprintf("payload must hold a %d byte header", headerSize)).
			WithField("payload_size").WithValue(opts.PayloadSize)
	case opts.RecvTimeout <= 0:
		return nil, errors.NewValidationError("receive timeout must be positive").
			WithField("recv_timeout").WithValue(opts.RecvTimeout)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	opts.Logger = opts.Logger.WithComponent("bench")
	return &Runner{opts: opts}, nil
}

// Progress returns the current counters.
func (r *Runner) Progress() Progress {
	p := Progress{
		Sent:     r.sent.Load(),
		Received: r.received.Load(),
		Total:    int64(r.opts.Producers) * int64(r.opts.Messages),
	}
	if start := r.started.Load(); start != 0 {
		p.Elapsed = time.Since(time.Unix(0, start))
	}
	return p
}

// Run opens a channel, starts the producers and consumes until every
// producer has closed its sender. It fails if a single receive waits longer
// than RecvTimeout or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	tx, rx, err := mpsc.OpenBytes(r.opts.PayloadSize, r.opts.Channel...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rx.Close() }()

	log := r.opts.Logger
	log.Info("starting benchmark",
		"producers", r.opts.Producers,
		"messages", r.opts.Messages,
		"payload_size", r.opts.PayloadSize)

	start := time.Now()
	r.started.Store(start.UnixNano())

	producers := pool.New().WithErrors()
	for id := 0; id < r.opts.Producers; id++ {
		w, err := tx.Clone()
		if err != nil {
			_ = tx.Close()
			return nil, err
		}
		producers.Go(func() error {
			return r.produce(uint64(id), w)
		})
	}
	// Only the clones keep the channel open from here on.
	_ = tx.Close()

	report := &Report{
		Producers:   r.opts.Producers,
		Messages:    r.opts.Messages,
		PayloadSize: r.opts.PayloadSize,
	}
	consumeErr := r.consume(ctx, rx, report)
	if consumeErr != nil {
		// Closing the receiver makes every outstanding Send fail fast.
		_ = rx.Close()
	}
	produceErr := producers.Wait()

	report.Duration = time.Since(start)
	report.Sent = r.sent.Load()
	report.Final = rx.Stats()

	if consumeErr != nil {
		log.Warn("benchmark aborted", "error", consumeErr, "received", report.Received)
		return report, consumeErr
	}
	if produceErr != nil {
		return report, produceErr
	}

	log.Info("benchmark finished",
		"received", report.Received,
		"out_of_order", report.OutOfOrder,
		"duration", report.Duration.String())
	return report, nil
}

func (r *Runner) produce(id uint64, w *mpsc.ByteSender) error {
	defer func() { _ = w.Close() }()

	buf := make([]byte, r.opts.PayloadSize)
	binary.BigEndian.PutUint64(buf[0:8], id)
	for seq := 0; seq < r.opts.Messages; seq++ {
		binary.BigEndian.PutUint64(buf[8:16], uint64(seq))
		if err := w.Send(buf); err != nil {
			return errors.NewChannelError(fmt.Sprintf("producer %d stopped at seq %d", id, seq), err).
				WithOp("send")
		}
		r.sent.Add(1)
	}
	return nil
}

func (r *Runner) consume(ctx context.Context, rx *mpsc.ByteReceiver, report *Report) error {
	next := make([]uint64, r.opts.Producers)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := rx.RecvTimeout(r.opts.RecvTimeout)
		switch {
		case err == nil:
		case errors.Is(err, mpsc.ErrDisconnected):
			return nil
		case errors.Is(err, mpsc.ErrTimedOut):
			return errors.NewTimeoutError("waiting for next message", r.opts.RecvTimeout).WithCause(err)
		default:
			return err
		}

		report.Received++
		r.received.Add(1)

		if len(msg) != r.opts.PayloadSize {
			report.Malformed++
			continue
		}
		id := binary.BigEndian.Uint64(msg[0:8])
		seq := binary.BigEndian.Uint64(msg[8:16])
		if id >= uint64(len(next)) {
			report.Malformed++
			continue
		}
		if seq != next[id] {
			report.OutOfOrder++
		}
		next[id] = seq + 1
	}
}
