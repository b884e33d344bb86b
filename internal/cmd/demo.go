package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mpsc/internal/event"
	"github.com/Iron-Ham/mpsc/internal/tui/styles"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through the channel lifecycle",
	Long: `Run a worker that sends one message immediately and another after a
delay, then run every lifecycle scenario (drain before disconnect, reopening
either side, timeouts, dropping the sender during a blocking receive and
fan-in from many senders) and report which passed.`,
	RunE: runDemo,
}

var (
	demoDelay  time.Duration
	demoEvents bool
)

func init() {
	demoCmd.Flags().DurationVar(&demoDelay, "delay", 250*time.Millisecond, "delay used by the timed scenarios")
	demoCmd.Flags().BoolVar(&demoEvents, "events", false, "print channel lifecycle events as they happen")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	out := cmd.OutOrStdout()
	if demoEvents {
		rt.bus.SubscribeAll(func(e event.Event) {
			fmt.Fprintln(out, styles.Muted.Render("  event: "+describeEvent(e)))
		})
	}

	fmt.Fprintln(out, styles.Title.Render("Worker"))
	if err := runWorker(out, rt.channelOptions("worker"), demoDelay); err != nil {
		return err
	}

	s := &suite{out: out, delay: demoDelay, rt: rt}
	s.run("sync", syncScenarios())
	s.run("async", asyncScenarios())

	fmt.Fprintf(out, "\nTotal: %d passed, %d failed\n", s.passed, s.failed)
	if s.failed > 0 {
		return fmt.Errorf("%d demo scenario(s) failed", s.failed)
	}
	return nil
}

func describeEvent(e event.Event) string {
	switch ev := e.(type) {
	case event.ChannelOpenedEvent:
		return fmt.Sprintf("%s opened", ev.Channel)
	case event.ChannelStateEvent:
		return fmt.Sprintf("%s %s -> %s (senders=%d receivers=%d buffered=%d)",
			ev.Channel, ev.Previous, ev.Current, ev.Senders, ev.Receivers, ev.Buffered)
	case event.ReceiverMisuseEvent:
		return fmt.Sprintf("%s has %d receivers (refused=%v)", ev.Channel, ev.Receivers, ev.Refused)
	case event.ChannelReleasedEvent:
		return fmt.Sprintf("%s released, %d undelivered", ev.Channel, ev.Discarded)
	default:
		return e.EventType()
	}
}

// suite runs named scenarios and tallies the results.
type suite struct {
	out    io.Writer
	delay  time.Duration
	rt     *runtime
	passed int
	failed int
}

func (s *suite) run(module string, scenarios []scenario) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, styles.Title.Render("Module "+module))
	for _, sc := range scenarios {
		err := sc.run(s.rt.channelOptions(module+"/"+sc.name), s.delay)
		line := styles.Badge(err == nil) + " " + sc.name
		if err != nil {
			s.failed++
			line += styles.Error.Render(": " + err.Error())
		} else {
			s.passed++
		}
		fmt.Fprintln(s.out, line)
	}
}
