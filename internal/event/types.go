// Package event defines the events channels publish about their lifecycle.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "channel.opened").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeChannelOpened   = "channel.opened"
	TypeChannelState    = "channel.state_changed"
	TypeReceiverMisuse  = "channel.receiver_misuse"
	TypeChannelReleased = "channel.released"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Channel Lifecycle Events
// -----------------------------------------------------------------------------

// ChannelOpenedEvent is published when a channel is created with its first
// sender and receiver attached.
type ChannelOpenedEvent struct {
	baseEvent
	Channel string
}

// NewChannelOpenedEvent creates a ChannelOpenedEvent.
func NewChannelOpenedEvent(channel string) ChannelOpenedEvent {
	return ChannelOpenedEvent{
		baseEvent: newBaseEvent(TypeChannelOpened),
		Channel:   channel,
	}
}

// ChannelStateEvent is published whenever the derived channel state changes,
// for example when the last sender closes or a new receiver reopens the channel.
type ChannelStateEvent struct {
	baseEvent
	Channel   string
	Previous  string
	Current   string
	Senders   int
	Receivers int
	Buffered  int
}

// NewChannelStateEvent creates a ChannelStateEvent.
func NewChannelStateEvent(channel, previous, current string, senders, receivers, buffered int) ChannelStateEvent {
	return ChannelStateEvent{
		baseEvent: newBaseEvent(TypeChannelState),
		Channel:   channel,
		Previous:  previous,
		Current:   current,
		Senders:   senders,
		Receivers: receivers,
		Buffered:  buffered,
	}
}

// ReceiverMisuseEvent is published when a receiver is attached while another
// receiver is still live. Refused is true when the channel rejected it.
type ReceiverMisuseEvent struct {
	baseEvent
	Channel   string
	Receivers int
	Refused   bool
}

// NewReceiverMisuseEvent creates a ReceiverMisuseEvent.
func NewReceiverMisuseEvent(channel string, receivers int, refused bool) ReceiverMisuseEvent {
	return ReceiverMisuseEvent{
		baseEvent: newBaseEvent(TypeReceiverMisuse),
		Channel:   channel,
		Receivers: receivers,
		Refused:   refused,
	}
}

// ChannelReleasedEvent is published when the last handle referencing a
// channel is closed and its storage is released. Discarded counts buffered
// messages that were never received.
type ChannelReleasedEvent struct {
	baseEvent
	Channel   string
	Discarded int
}

// NewChannelReleasedEvent creates a ChannelReleasedEvent.
func NewChannelReleasedEvent(channel string, discarded int) ChannelReleasedEvent {
	return ChannelReleasedEvent{
		baseEvent: newBaseEvent(TypeChannelReleased),
		Channel:   channel,
		Discarded: discarded,
	}
}
