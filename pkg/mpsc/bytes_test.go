package mpsc

import (
	"bytes"
	"errors"
	"testing"

	ierrors "github.com/Iron-Ham/mpsc/internal/errors"
)

func TestOpenBytes_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, _, err := OpenBytes(size)
		if !errors.Is(err, ierrors.ErrInvalidInput) {
			t.Errorf("OpenBytes(%d) error = %v, want ErrInvalidInput", size, err)
		}
	}
}

func TestByteChannel_RoundTripCopies(t *testing.T) {
	tx, rx, err := OpenBytes(4)
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	defer mustClose(t, rx)
	defer mustClose(t, tx)

	if tx.Size() != 4 || rx.Size() != 4 {
		t.Errorf("Size() = %d/%d, want 4", tx.Size(), rx.Size())
	}

	buf := []byte{1, 2, 3, 4}
	if err := tx.Send(buf); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	buf[0] = 99

	got, err := rx.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Recv() = %v, want [1 2 3 4]; sender buffer reuse leaked into channel", got)
	}

	// The node backing got is now pooled; sending again must not alias it.
	_ = tx.Send([]byte{5, 6, 7, 8})
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("received payload changed to %v after node reuse", got)
	}
	next, _ := rx.TryRecv()
	if !bytes.Equal(next, []byte{5, 6, 7, 8}) {
		t.Errorf("TryRecv() = %v, want [5 6 7 8]", next)
	}
}

func TestByteChannel_SizeMismatch(t *testing.T) {
	obs := &recordingObserver{}
	tx, rx, _ := OpenBytes(8, WithObserver(obs))
	defer mustClose(t, rx)
	defer mustClose(t, tx)

	err := tx.Send([]byte("short"))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("Send() error = %v, want ErrSizeMismatch", err)
	}
	var vErr *ierrors.ValidationError
	if !errors.As(err, &vErr) || vErr.Value != 5 {
		t.Errorf("expected ValidationError with value 5, got %v", err)
	}
	if rx.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after rejected payload", rx.Len())
	}
	if len(obs.sends) != 1 || obs.sends[0] == nil {
		t.Errorf("observer sends = %v, want one failed send", obs.sends)
	}
}

func TestByteChannel_HandleOps(t *testing.T) {
	tx, rx, _ := OpenBytes(1)

	tx2, err := tx.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	mustClose(t, tx)
	mustClose(t, tx2)
	if rx.State() != StateSendersGone {
		t.Errorf("State() = %v, want senders_gone", rx.State())
	}

	tx3, err := rx.NewSender()
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}
	mustClose(t, rx)
	if tx3.State() != StateReceiversGone {
		t.Errorf("State() = %v, want receivers_gone", tx3.State())
	}

	rx2, err := tx3.NewReceiver()
	if err != nil {
		t.Fatalf("NewReceiver() error = %v", err)
	}
	_ = tx3.Send([]byte{7})
	if got, err := rx2.RecvTimeout(0); err != nil || got[0] != 7 {
		t.Errorf("RecvTimeout() = %v, %v; want [7], nil", got, err)
	}
	if rx2.Stats().Refs != 2 {
		t.Errorf("Refs = %d, want 2", rx2.Stats().Refs)
	}
	mustClose(t, tx3)
	mustClose(t, rx2)
}
