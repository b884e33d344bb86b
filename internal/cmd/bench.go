package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/mpsc/internal/bench"
	"github.com/Iron-Ham/mpsc/internal/tui"
	"github.com/Iron-Ham/mpsc/internal/tui/styles"
	"github.com/Iron-Ham/mpsc/internal/util"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure fan-in throughput and verify ordering",
	Long: `Run N producers, each holding its own cloned sender, against a single
receiver on a fixed-size byte channel.

Every payload carries its producer id and sequence number. The run fails if
any producer's messages arrive out of order or if the receiver does not see
exactly producers x messages payloads before the channel disconnects.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntP("producers", "p", 0, "number of concurrent producers")
	benchCmd.Flags().IntP("messages", "n", 0, "messages sent by each producer")
	benchCmd.Flags().Int("payload-size", 0, "fixed message size in bytes (minimum 16)")
	benchCmd.Flags().Bool("tui", true, "show live progress when stdout is a terminal")
	benchCmd.Flags().Bool("metrics", false, "serve Prometheus metrics during the run")
	benchCmd.Flags().String("metrics-addr", "", "metrics listen address")
	_ = viper.BindPFlag("bench.producers", benchCmd.Flags().Lookup("producers"))
	_ = viper.BindPFlag("bench.messages", benchCmd.Flags().Lookup("messages"))
	_ = viper.BindPFlag("bench.payload_size", benchCmd.Flags().Lookup("payload-size"))
	_ = viper.BindPFlag("bench.tui", benchCmd.Flags().Lookup("tui"))
	_ = viper.BindPFlag("metrics.enabled", benchCmd.Flags().Lookup("metrics"))
	_ = viper.BindPFlag("metrics.addr", benchCmd.Flags().Lookup("metrics-addr"))
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	const name = "bench"
	runner, err := bench.NewRunner(bench.Options{
		Producers:   rt.cfg.Bench.Producers,
		Messages:    rt.cfg.Bench.Messages,
		PayloadSize: rt.cfg.Bench.PayloadSize,
		RecvTimeout: rt.cfg.Bench.RecvTimeout(),
		Channel:     rt.channelOptions(name),
		Logger:      rt.logger,
	})
	if err != nil {
		return err
	}

	var report *bench.Report
	if rt.cfg.Bench.TUI && isTerminal() {
		title := fmt.Sprintf("mpsc bench: %d producers x %d messages", rt.cfg.Bench.Producers, rt.cfg.Bench.Messages)
		report, err = tui.RunBench(ctx, title, runner)
	} else {
		report, err = runner.Run(ctx)
	}
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("benchmark failed verification: received %d of %d, %d out of order",
			report.Received, report.Expected(), report.OutOfOrder)
	}
	return nil
}

func printReport(w io.Writer, r *bench.Report) {
	row := func(label, value string) {
		fmt.Fprintln(w, styles.Label.Render(label)+value)
	}

	fmt.Fprintln(w, styles.Title.Render("Benchmark report"))
	row("producers", fmt.Sprintf("%d", r.Producers))
	row("messages", fmt.Sprintf("%d per producer", r.Messages))
	row("payload", fmt.Sprintf("%d bytes", r.PayloadSize))
	row("sent", util.FormatCount(r.Sent))
	row("received", fmt.Sprintf("%s of %s", util.FormatCount(r.Received), util.FormatCount(r.Expected())))
	row("out of order", fmt.Sprintf("%d", r.OutOfOrder))
	row("malformed", fmt.Sprintf("%d", r.Malformed))
	row("duration", util.FormatDuration(r.Duration))
	row("throughput", util.FormatRate(r.Throughput()))
	row("final state", styles.StateStyle(r.Final.State.String()).Render(r.Final.State.String()))
	row("pooled nodes", fmt.Sprintf("%d", r.Final.Pooled))
	fmt.Fprintln(w, styles.Badge(r.OK()))
}
