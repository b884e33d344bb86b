// Package mpsc provides an unbounded multi-producer, single-consumer channel
// whose lifetime is driven by independently owned sender and receiver handles.
//
// Any number of goroutines may send; one goroutine receives, in FIFO order
// per producer. Unlike a Go channel, neither side closes the channel
// explicitly. Instead each [Sender] and [Receiver] is closed individually,
// and the channel's [State] is derived from how many of each are still live:
//
//   - With no live senders, a receiver drains what is buffered and then sees
//     [ErrDisconnected].
//   - With no live receivers, Send fails with [ErrDisconnected] and buffers
//     nothing.
//   - Attaching a new handle to an empty side reopens the channel.
//
// # Main Types
//
//   - [Sender]: producing handle; Clone it once per producer
//   - [Receiver]: consuming handle with blocking, try, timed and context receives
//   - [ByteSender] and [ByteReceiver]: fixed-size opaque byte payloads
//   - [Observer]: hook for metrics on every send, receive and state change
//
// # Basic Usage
//
//	tx, rx := mpsc.Open[string](mpsc.WithName("jobs"))
//
//	for i := 0; i < 4; i++ {
//	    w, _ := tx.Clone()
//	    go func() {
//	        defer w.Close()
//	        _ = w.Send("hello")
//	    }()
//	}
//	tx.Close()
//
//	for {
//	    msg, err := rx.Recv()
//	    if errors.Is(err, mpsc.ErrDisconnected) {
//	        break
//	    }
//	    fmt.Println(msg)
//	}
//	rx.Close()
//
// # Resource Lifetime
//
// Every handle holds one reference to shared storage. When the last handle is
// closed, buffered messages are discarded and retired nodes are freed. A
// handle that is never closed keeps the storage alive.
package mpsc
