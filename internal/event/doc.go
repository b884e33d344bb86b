// Package event provides a pub-sub event bus for observing channel lifecycles.
//
// Channels opened with a bus attached publish an event on every lifecycle
// transition. Subscribers learn when a side closes or reopens without polling
// the channel and without holding any channel lock.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Channel Events
//
//   - [ChannelOpenedEvent]: a channel was created
//   - [ChannelStateEvent]: the derived open/closed state changed
//   - [ReceiverMisuseEvent]: a second live receiver was attached (or refused)
//   - [ChannelReleasedEvent]: the last handle closed and storage was freed
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeChannelState, func(e event.Event) {
//	    st := e.(event.ChannelStateEvent)
//	    fmt.Println(st.Channel, st.Previous, "->", st.Current)
//	})
//
//	tx, rx := mpsc.Open[int](mpsc.WithName("jobs"), mpsc.WithBus(bus))
//
// # Thread Safety
//
// All Bus methods are safe for concurrent use. Publish snapshots the
// subscriber lists under a read lock and invokes handlers without holding it.
package event
