package mpsc

// State is the open/closed state of a channel, derived from how many live
// senders and receivers are attached. It is not terminal: attaching a new
// handle to an empty side moves the channel back to Open.
type State int

const (
	// StateOpen means at least one sender and one receiver are attached.
	StateOpen State = iota
	// StateSendersGone means every sender has been closed. Receivers drain
	// buffered messages and then observe ErrDisconnected.
	StateSendersGone
	// StateReceiversGone means every receiver has been closed. Sends fail
	// with ErrDisconnected.
	StateReceiversGone
	// StateBothGone means neither side has a live handle. Only reachable
	// transiently, since the storage is released with the last handle.
	StateBothGone
)

// stateOf derives the state from the two liveness counts.
func stateOf(senders, receivers int) State {
	switch {
	case senders > 0 && receivers > 0:
		return StateOpen
	case receivers > 0:
		return StateSendersGone
	case senders > 0:
		return StateReceiversGone
	default:
		return StateBothGone
	}
}

// Closed reports whether at least one side has no live handles.
func (s State) Closed() bool {
	return s != StateOpen
}

// String returns the snake_case name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSendersGone:
		return "senders_gone"
	case StateReceiversGone:
		return "receivers_gone"
	case StateBothGone:
		return "both_gone"
	default:
		return "unknown"
	}
}

// transition records a state change observed while mutating the counters,
// so it can be reported after the queue lock is released.
type transition struct {
	from, to  State
	senders   int
	receivers int
	buffered  int
}

func (t transition) changed() bool {
	return t.from != t.to
}

func (t transition) reopened() bool {
	return t.from.Closed() && t.to == StateOpen
}
