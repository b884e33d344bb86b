package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mpsc/internal/event"
	"github.com/Iron-Ham/mpsc/internal/testutil"
	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// isolateConfig points the config search path at an empty directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "mpsc" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "mpsc")
	}

	// Compare by Name(), not Use which includes args
	expectedCmds := []string{"bench", "demo", "watch", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestConfigShowCommand(t *testing.T) {
	isolateConfig(t)

	output, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}
	for _, want := range []string{"channel:", "freelist_limit:", "bench:", "producers:", "watch:", "metrics:"} {
		if !strings.Contains(output, want) {
			t.Errorf("config show output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "mpsc.yaml")

	output, err := executeCommand(rootCmd, "config", "init", "--path", path)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	if _, err := executeCommand(rootCmd, "config", "init", "--path", path); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
	if _, err := executeCommand(rootCmd, "config", "init", "--path", path, "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}

func TestConfigPathCommand(t *testing.T) {
	dir := isolateConfig(t)

	output, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(output, filepath.Join(dir, "mpsc", "config.yaml")) {
		t.Errorf("config path output missing XDG location:\n%s", output)
	}
}

func TestBenchCommand(t *testing.T) {
	isolateConfig(t)

	output, err := executeCommand(rootCmd, "bench",
		"--producers", "4", "--messages", "200", "--payload-size", "16", "--tui=false")
	if err != nil {
		t.Fatalf("bench failed: %v\n%s", err, output)
	}
	for _, want := range []string{"Benchmark report", "800 of 800", "PASS"} {
		if !strings.Contains(output, want) {
			t.Errorf("bench output missing %q:\n%s", want, output)
		}
	}
}

func TestBenchCommand_InvalidConfig(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(rootCmd, "bench", "--payload-size", "4", "--tui=false")
	if err == nil || !strings.Contains(err.Error(), "bench.payload_size") {
		t.Errorf("bench with tiny payload error = %v, want payload_size validation error", err)
	}
	// Restore the flag so later tests see the configured default.
	_ = benchCmd.Flags().Set("payload-size", "64")
}

func TestDemoCommand(t *testing.T) {
	isolateConfig(t)

	output, err := executeCommand(rootCmd, "demo", "--delay", "20ms", "--events")
	if err != nil {
		t.Fatalf("demo failed: %v\n%s", err, output)
	}
	for _, want := range []string{"Hello, world!", "Delayed for 20ms", "Module sync", "Module async", "Total: 10 passed, 0 failed", "event: worker opened"} {
		if !strings.Contains(output, want) {
			t.Errorf("demo output missing %q:\n%s", want, output)
		}
	}
}

func TestWatchCommand(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	res := testutil.Go(func() (string, error) {
		return executeCommand(rootCmd, "watch", dir, "--count", "1", "--include", "*.txt")
	})

	// Keep writing until the watcher is up and reports a change.
	var r testutil.Result[string]
	for i := 0; ; i++ {
		testutil.WriteFiles(t, dir, map[string]string{fmt.Sprintf("f%d.txt", i): "x"})
		select {
		case r = <-res:
		case <-time.After(50 * time.Millisecond):
			if i < 100 {
				continue
			}
			t.Fatal("watch did not report a change")
		}
		break
	}

	if r.Err != nil {
		t.Fatalf("watch failed: %v\n%s", r.Err, r.Value)
	}
	if !strings.Contains(r.Value, ".txt") {
		t.Errorf("watch output missing changed file:\n%s", r.Value)
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		ev   event.Event
		want string
	}{
		{event.NewChannelOpenedEvent("c"), "c opened"},
		{event.NewChannelStateEvent("c", "open", "senders_gone", 0, 1, 2), "c open -> senders_gone (senders=0 receivers=1 buffered=2)"},
		{event.NewReceiverMisuseEvent("c", 2, true), "c has 2 receivers (refused=true)"},
		{event.NewChannelReleasedEvent("c", 3), "c released, 3 undelivered"},
	}
	for _, tt := range tests {
		if got := describeEvent(tt.ev); got != tt.want {
			t.Errorf("describeEvent() = %q, want %q", got, tt.want)
		}
	}
}

func TestScenarios(t *testing.T) {
	for _, sc := range append(syncScenarios(), asyncScenarios()...) {
		t.Run(sc.name, func(t *testing.T) {
			if err := sc.run(nil, 20*time.Millisecond); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestExpect(t *testing.T) {
	if err := expect("step", nil, "OK"); err != nil {
		t.Errorf("expect(nil, OK) = %v", err)
	}
	err := expect("step", mpsc.ErrEmpty, "CLOSED")
	if err == nil || !strings.Contains(err.Error(), "got EMPTY, want CLOSED") {
		t.Errorf("expect() error = %v", err)
	}
}
