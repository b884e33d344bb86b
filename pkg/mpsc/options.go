package mpsc

import (
	"github.com/Iron-Ham/mpsc/internal/event"
	"github.com/Iron-Ham/mpsc/internal/logging"
)

// RecvMode identifies which receive discipline produced a result.
type RecvMode int

const (
	// RecvBlocking is Recv: wait until a message arrives or the channel closes.
	RecvBlocking RecvMode = iota
	// RecvTry is TryRecv: never wait.
	RecvTry
	// RecvTimeout is RecvTimeout: wait at most a fixed duration.
	RecvTimeout
	// RecvContext is RecvContext: wait until the context is done.
	RecvContext
)

// String returns the mode name used in logs and metric labels.
func (m RecvMode) String() string {
	switch m {
	case RecvBlocking:
		return "blocking"
	case RecvTry:
		return "try"
	case RecvTimeout:
		return "timeout"
	case RecvContext:
		return "context"
	default:
		return "unknown"
	}
}

// Observer receives a callback for every send, receive and state change on
// a channel. Implementations must be safe for concurrent use and must not
// block; they run on the caller's goroutine outside the queue lock.
type Observer interface {
	// ObserveSend is called after every Send with its result.
	ObserveSend(err error)
	// ObserveRecv is called after every receive with its mode and result.
	ObserveRecv(mode RecvMode, err error)
	// ObserveState is called when the derived channel state changes.
	ObserveState(from, to State)
}

type nopObserver struct{}

func (nopObserver) ObserveSend(error)           {}
func (nopObserver) ObserveRecv(RecvMode, error) {}
func (nopObserver) ObserveState(State, State)   {}

// Option configures a channel at Open time.
type Option func(*options)

type options struct {
	name           string
	logger         *logging.Logger
	bus            *event.Bus
	observer       Observer
	strictReceiver bool
	freelistLimit  int
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:        logging.NopLogger(),
		observer:      nopObserver{},
		freelistLimit: defaultFreelistLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.name != "" {
		o.logger = o.logger.WithChannel(o.name)
	}
	return o
}

// WithName labels the channel in logs, events, metrics and errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for lifecycle and misuse diagnostics.
// A nil logger is ignored.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBus attaches an event bus. Lifecycle events (opened, state changed,
// receiver misuse, released) are published to it.
func WithBus(bus *event.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithObserver installs an Observer, typically a metrics collector.
// A nil observer is ignored.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithStrictReceiver refuses to attach a receiver while another one is live.
// By default a second receiver is allowed but reported as misuse.
func WithStrictReceiver() Option {
	return func(o *options) {
		o.strictReceiver = true
	}
}

// WithFreelistLimit bounds how many retired nodes are kept for reuse.
// Zero disables reuse; negative values are ignored.
func WithFreelistLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.freelistLimit = n
		}
	}
}
