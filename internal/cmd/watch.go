package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/mpsc/internal/tui/styles"
	"github.com/Iron-Ham/mpsc/internal/util"
	"github.com/Iron-Ham/mpsc/internal/watch"
	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

var watchCmd = &cobra.Command{
	Use:   "watch PATH...",
	Short: "Stream filesystem changes from several trees through one channel",
	Long: `Watch one or more directory trees. Each tree is observed by its own
producer holding a cloned sender; every change is printed by a single
consumer in arrival order.

Patterns without a slash match any path element (e.g. "*.go", ".git");
patterns with a slash match the whole path relative to its root.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var watchCount int

func init() {
	watchCmd.Flags().StringSlice("include", nil, "only report paths matching these globs")
	watchCmd.Flags().StringSlice("exclude", nil, "never report paths matching these globs")
	watchCmd.Flags().Int("debounce-ms", 0, "coalesce repeated events for a path within this window")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "exit after this many changes (0 runs until interrupted)")
	_ = viper.BindPFlag("watch.include", watchCmd.Flags().Lookup("include"))
	_ = viper.BindPFlag("watch.exclude", watchCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("watch.debounce_ms", watchCmd.Flags().Lookup("debounce-ms"))
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	const name = "watch"
	w, err := watch.New(args, watch.Options{
		Include:  rt.cfg.Watch.Include,
		Exclude:  rt.cfg.Watch.Exclude,
		Debounce: rt.cfg.Watch.Debounce(),
		Logger:   rt.logger,
		Channel:  rt.channelOptions(name),
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	rt.track(name, w.Stats)

	w.Start()
	out := cmd.OutOrStdout()
	width := terminalWidth(100)
	fmt.Fprintln(out, styles.Muted.Render(fmt.Sprintf("watching %d path(s), ctrl+c to stop", len(args))))

	for seen := 0; watchCount == 0 || seen < watchCount; seen++ {
		c, err := w.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, mpsc.ErrDisconnected) {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, formatChange(c, width))
	}
	return nil
}

// formatChange renders one change as "HH:MM:SS op path", keeping the tail
// of long paths within width.
func formatChange(c watch.Change, width int) string {
	ts := c.Time.Format("15:04:05")
	op := fmt.Sprintf("%-7s", c.Op)
	prefix := styles.Muted.Render(ts) + " " + styles.Primary.Render(op) + " "
	avail := width - len(ts) - len(op) - 2
	return prefix + util.TruncateLeft(c.Path, avail)
}
