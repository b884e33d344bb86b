// Package logging is a thin log/slog wrapper that writes JSON entries and
// carries per-channel and per-component attributes.
//
// Channels emit DEBUG entries for open, state transitions and release, and a
// WARN entry when a second receiver attaches. Commands log run summaries at
// INFO. Child loggers from [Logger.With], [Logger.WithChannel] and
// [Logger.WithComponent] share one handler and are safe to use from many
// goroutines.
//
//	logger, err := logging.NewLogger("/tmp/mpsc.log", logging.LevelDebug)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithChannel("jobs").Debug("channel opened")
//	// {"time":"...","level":"DEBUG","msg":"channel opened","channel":"jobs"}
//
// Tests pass [NopLogger] or build one with [New] over a bytes.Buffer.
package logging
