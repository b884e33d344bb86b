package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

const demoValue = 12

type scenario struct {
	name string
	run  func(opts []mpsc.Option, delay time.Duration) error
}

// expect compares a channel result against the wanted result code.
func expect(step string, err error, want string) error {
	if got := mpsc.ResultString(err); got != want {
		return fmt.Errorf("%s: got %s, want %s", step, got, want)
	}
	return nil
}

func expectValue(step string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: got value %d, want %d", step, got, want)
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// runWorker sends one message immediately and one after delay from a worker
// goroutine, then drops the worker's sender.
func runWorker(out io.Writer, opts []mpsc.Option, delay time.Duration) error {
	tx, rx := mpsc.Open[string](opts...)
	defer func() { _ = rx.Close() }()

	var wg conc.WaitGroup
	wg.Go(func() {
		defer func() { _ = tx.Close() }()
		_ = tx.Send("Hello, world!")
		time.Sleep(delay)
		_ = tx.Send(fmt.Sprintf("Delayed for %s", delay))
	})
	defer wg.Wait()

	for {
		start := time.Now()
		msg, err := rx.Recv()
		if err != nil {
			return expect("worker drained", err, "CLOSED")
		}
		fmt.Fprintf(out, "  %s (after %s)\n", msg, time.Since(start).Round(time.Millisecond))
	}
}

func syncScenarios() []scenario {
	return []scenario{
		{"simple send and recv", func(opts []mpsc.Option, _ time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()
			sendErr := tx.Send(demoValue)
			_ = tx.Close()
			v, err := rx.Recv()
			return firstErr(expect("send", sendErr, "OK"), expect("recv", err, "OK"), expectValue("recv", v, demoValue))
		}},
		{"try recv", func(opts []mpsc.Option, _ time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()
			_, emptyErr := rx.TryRecv()
			_ = tx.Send(demoValue)
			v, okErr := rx.TryRecv()
			_ = tx.Close()
			_, closedErr := rx.TryRecv()
			return firstErr(
				expect("try recv on empty", emptyErr, "EMPTY"),
				expect("try recv with data", okErr, "OK"),
				expectValue("try recv with data", v, demoValue),
				expect("try recv after close", closedErr, "CLOSED"))
		}},
		{"send on closed channel", func(opts []mpsc.Option, _ time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = tx.Close() }()
			_ = rx.Close()
			return expect("send", tx.Send(demoValue), "CLOSED")
		}},
		{"recv on closed channel", func(opts []mpsc.Option, _ time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()
			_ = tx.Close()
			_, err := rx.Recv()
			return expect("recv", err, "CLOSED")
		}},
		{"recv left over data on closed channel", func(opts []mpsc.Option, _ time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()
			_ = tx.Send(demoValue)
			_ = tx.Close()
			v, err := rx.Recv()
			_, closedErr := rx.Recv()
			return firstErr(expect("recv", err, "OK"), expectValue("recv", v, demoValue), expect("recv after drain", closedErr, "CLOSED"))
		}},
		{"re-open", func(opts []mpsc.Option, _ time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			_ = rx.Close()
			if err := expect("send without receiver", tx.Send(demoValue), "CLOSED"); err != nil {
				_ = tx.Close()
				return err
			}
			rx, err := tx.NewReceiver()
			if err != nil {
				_ = tx.Close()
				return err
			}
			defer func() { _ = rx.Close() }()
			sendErr := tx.Send(demoValue)
			v, recvErr := rx.Recv()
			_ = tx.Close()
			_, closedErr := rx.Recv()
			if err := firstErr(expect("send after new receiver", sendErr, "OK"), expect("recv", recvErr, "OK"),
				expectValue("recv", v, demoValue), expect("recv without sender", closedErr, "CLOSED")); err != nil {
				return err
			}

			tx, err = rx.NewSender()
			if err != nil {
				return err
			}
			defer func() { _ = tx.Close() }()
			sendErr = tx.Send(demoValue)
			v, recvErr = rx.Recv()
			return firstErr(expect("send after new sender", sendErr, "OK"), expect("recv", recvErr, "OK"), expectValue("recv", v, demoValue))
		}},
	}
}

func asyncScenarios() []scenario {
	return []scenario{
		{"wait for data", func(opts []mpsc.Option, delay time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()
			var wg conc.WaitGroup
			wg.Go(func() {
				defer func() { _ = tx.Close() }()
				time.Sleep(delay)
				_ = tx.Send(demoValue)
			})
			defer wg.Wait()
			v, err := rx.Recv()
			return firstErr(expect("recv", err, "OK"), expectValue("recv", v, demoValue))
		}},
		{"timeout", func(opts []mpsc.Option, delay time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			var wg conc.WaitGroup
			wg.Go(func() {
				defer func() { _ = tx.Close() }()
				time.Sleep(2 * delay)
				_ = tx.Send(demoValue)
			})
			defer wg.Wait()
			start := time.Now()
			_, err := rx.RecvTimeout(delay)
			elapsed := time.Since(start)
			_ = rx.Close()
			if err := expect("recv timeout", err, "TIMEOUT"); err != nil {
				return err
			}
			if elapsed < delay {
				return fmt.Errorf("recv timeout returned after %s, before the %s deadline", elapsed, delay)
			}
			return nil
		}},
		{"drop sender during recv", func(opts []mpsc.Option, delay time.Duration) error {
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()
			var wg conc.WaitGroup
			wg.Go(func() {
				time.Sleep(delay)
				_ = tx.Close()
			})
			defer wg.Wait()
			_, err := rx.Recv()
			return expect("recv", err, "CLOSED")
		}},
		{"lots of senders", func(opts []mpsc.Option, _ time.Duration) error {
			const count = 100
			tx, rx := mpsc.Open[int](opts...)
			defer func() { _ = rx.Close() }()

			var wg sync.WaitGroup
			for i := 0; i < count; i++ {
				clone, err := tx.Clone()
				if err != nil {
					_ = tx.Close()
					return err
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = clone.Send(demoValue)
					_ = clone.Close()
				}()
			}
			_ = tx.Close()

			received := 0
			for {
				v, err := rx.Recv()
				if err != nil {
					wg.Wait()
					if err := expect("recv", err, "CLOSED"); err != nil {
						return err
					}
					break
				}
				if err := expectValue("recv", v, demoValue); err != nil {
					return err
				}
				received++
			}
			if received != count {
				return fmt.Errorf("received %d messages, want %d", received, count)
			}
			return nil
		}},
	}
}
