package mpsc

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/mpsc/internal/event"
	"github.com/Iron-Ham/mpsc/internal/logging"
)

func TestFreelist_GetPut(t *testing.T) {
	f := freelist[int]{limit: 2}

	a, b, c := f.get(), f.get(), f.get()
	if f.size != 0 {
		t.Fatalf("size = %d, want 0 after allocating fresh nodes", f.size)
	}
	if !f.put(a) || !f.put(b) {
		t.Fatal("put() refused a node below the limit")
	}
	if f.put(c) {
		t.Error("put() accepted a node beyond the limit")
	}
	if got := f.get(); got != b {
		t.Error("get() did not return the most recently retired node")
	}
	if f.size != 1 {
		t.Errorf("size = %d, want 1", f.size)
	}

	f.clear()
	if f.head != nil || f.size != 0 {
		t.Errorf("clear() left head=%v size=%d", f.head, f.size)
	}
}

func TestQueue_NodesAreRecycled(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		wantPooled int
	}{
		{"default limit", nil, 3},
		{"limit one", []Option{WithFreelistLimit(1)}, 1},
		{"reuse disabled", []Option{WithFreelistLimit(0)}, 0},
		{"negative ignored", []Option{WithFreelistLimit(-5)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, rx := Open[string](tt.opts...)
			defer mustClose(t, rx)
			defer mustClose(t, tx)

			for _, s := range []string{"a", "b", "c"} {
				_ = tx.Send(s)
			}
			for i := 0; i < 3; i++ {
				if _, err := rx.Recv(); err != nil {
					t.Fatalf("Recv() error = %v", err)
				}
			}
			if got := rx.Stats().Pooled; got != tt.wantPooled {
				t.Errorf("Pooled = %d, want %d", got, tt.wantPooled)
			}
		})
	}
}

func TestQueue_RetiredNodesAreZeroed(t *testing.T) {
	tx, rx := Open[*int]()
	defer mustClose(t, rx)
	defer mustClose(t, tx)

	v := 1
	_ = tx.Send(&v)
	if _, err := rx.Recv(); err != nil {
		t.Fatalf("Recv() error = %v", err)
	}

	q := rx.cell.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.free.head == nil {
		t.Fatal("expected a retired node on the freelist")
	}
	if q.free.head.value != nil {
		t.Error("retired node still references the received value")
	}
}

func TestQueue_HeadTailInvariant(t *testing.T) {
	tx, rx := Open[int]()
	defer mustClose(t, rx)
	defer mustClose(t, tx)

	q := rx.cell.q
	check := func(when string) {
		t.Helper()
		q.mu.Lock()
		defer q.mu.Unlock()
		if (q.head == nil) != (q.tail == nil) {
			t.Errorf("%s: head nil=%v, tail nil=%v", when, q.head == nil, q.tail == nil)
		}
		if (q.head == nil) != (q.length == 0) {
			t.Errorf("%s: head nil=%v with length %d", when, q.head == nil, q.length)
		}
	}

	check("empty")
	_ = tx.Send(1)
	check("one buffered")
	_ = tx.Send(2)
	check("two buffered")
	_, _ = rx.Recv()
	check("one left")
	_, _ = rx.Recv()
	check("drained")
}

func TestShared_ReleaseOnLastClose(t *testing.T) {
	bus := event.NewBus()
	var (
		mu       sync.Mutex
		released []event.ChannelReleasedEvent
	)
	bus.Subscribe(event.TypeChannelReleased, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		released = append(released, e.(event.ChannelReleasedEvent))
	})

	tx, rx := Open[int](WithName("rel"), WithBus(bus))
	_ = tx.Send(1)
	_ = tx.Send(2)

	q := rx.cell.q
	mustClose(t, tx)
	mustClose(t, rx)

	mu.Lock()
	defer mu.Unlock()
	if len(released) != 1 {
		t.Fatalf("got %d release events, want 1", len(released))
	}
	if released[0].Channel != "rel" || released[0].Discarded != 2 {
		t.Errorf("release event = %+v, want channel=rel discarded=2", released[0])
	}
	if !q.released || q.head != nil || q.free.size != 0 {
		t.Errorf("queue not released: released=%v head=%v pooled=%d", q.released, q.head, q.free.size)
	}
}

func TestShared_DropPanicsOnUnderflow(t *testing.T) {
	cell := newShared[int](valueStorage[int]{}, newOptions(nil))
	cell.drop()

	defer func() {
		if recover() == nil {
			t.Error("drop() below zero did not panic")
		}
	}()
	cell.drop()
}

func TestChannel_LifecycleEvents(t *testing.T) {
	bus := event.NewBus()
	var (
		mu     sync.Mutex
		events []event.Event
	)
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	tx, rx := Open[int](WithName("jobs"), WithBus(bus))
	mustClose(t, tx)
	tx2, _ := rx.NewSender()
	mustClose(t, rx)
	mustClose(t, tx2)

	want := []string{
		event.TypeChannelOpened,
		event.TypeChannelState, // open -> senders_gone
		event.TypeChannelState, // senders_gone -> open
		event.TypeChannelState, // open -> receivers_gone
		event.TypeChannelState, // receivers_gone -> both_gone
		event.TypeChannelReleased,
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, e := range events {
		if e.EventType() != want[i] {
			t.Errorf("event %d = %s, want %s", i, e.EventType(), want[i])
		}
	}

	reopen := events[2].(event.ChannelStateEvent)
	if reopen.Previous != "senders_gone" || reopen.Current != "open" || reopen.Senders != 1 {
		t.Errorf("reopen event = %+v", reopen)
	}
}

func TestChannel_ReceiverMisuseReported(t *testing.T) {
	var buf bytes.Buffer
	bus := event.NewBus()
	var misuse []event.ReceiverMisuseEvent
	bus.Subscribe(event.TypeReceiverMisuse, func(e event.Event) {
		misuse = append(misuse, e.(event.ReceiverMisuseEvent))
	})

	tx, rx := Open[int](WithName("m"), WithBus(bus), WithLogger(logging.New(&buf, logging.LevelWarn)))
	defer mustClose(t, tx)
	defer mustClose(t, rx)

	rx2, err := rx.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	mustClose(t, rx2)

	if len(misuse) != 1 || misuse[0].Refused || misuse[0].Receivers != 2 {
		t.Errorf("misuse events = %+v, want one unrefused event with 2 receivers", misuse)
	}
	if !strings.Contains(buf.String(), "multiple receivers attached to channel") {
		t.Errorf("expected misuse warning in log, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"channel":"m"`) {
		t.Errorf("expected channel attribute in log, got %q", buf.String())
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	sends  []error
	recvs  []RecvMode
	states [][2]State
}

func (o *recordingObserver) ObserveSend(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sends = append(o.sends, err)
}

func (o *recordingObserver) ObserveRecv(mode RecvMode, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recvs = append(o.recvs, mode)
}

func (o *recordingObserver) ObserveState(from, to State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, [2]State{from, to})
}

func TestChannel_Observer(t *testing.T) {
	obs := &recordingObserver{}
	tx, rx := Open[int](WithObserver(obs), WithObserver(nil))

	_ = tx.Send(1)
	_, _ = rx.Recv()
	_, _ = rx.TryRecv()
	_, _ = rx.RecvTimeout(0)
	mustClose(t, rx)
	_ = tx.Send(2)
	mustClose(t, tx)

	if len(obs.sends) != 2 || obs.sends[0] != nil || !errors.Is(obs.sends[1], ErrDisconnected) {
		t.Errorf("sends = %v, want [nil ErrDisconnected]", obs.sends)
	}
	wantModes := []RecvMode{RecvBlocking, RecvTry, RecvTry}
	if len(obs.recvs) != len(wantModes) {
		t.Fatalf("recvs = %v, want %v", obs.recvs, wantModes)
	}
	for i, m := range wantModes {
		if obs.recvs[i] != m {
			t.Errorf("recvs[%d] = %v, want %v", i, obs.recvs[i], m)
		}
	}
	wantStates := [][2]State{
		{StateOpen, StateReceiversGone},
		{StateReceiversGone, StateBothGone},
	}
	if len(obs.states) != len(wantStates) {
		t.Fatalf("states = %v, want %v", obs.states, wantStates)
	}
	for i, s := range wantStates {
		if obs.states[i] != s {
			t.Errorf("states[%d] = %v, want %v", i, obs.states[i], s)
		}
	}
}
