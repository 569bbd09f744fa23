// Command lapreplay runs a recorded geodetic stream through the lap
// counter offline. Each input line is one envelope as published on the
// geodetic subject; lap events and actions are written to stdout as
// JSON lines.
//
//	lapreplay [--config file] recording.jsonl
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/samirrijal/lapwatch/internal/core/lap"
	"github.com/samirrijal/lapwatch/internal/core/usecases"
	"github.com/samirrijal/lapwatch/internal/pkg/config"
	"github.com/samirrijal/lapwatch/internal/pkg/logging"
)

func main() {
	fs := config.Flags("lapreplay")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("flags: %v", err)
	}

	cfg, err := config.Load("lapreplay", fs)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// stdout carries the events, logs go to stderr
	slog.SetDefault(logging.New(cfg.Log.Level, "text", os.Stderr))

	var in io.Reader = os.Stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("open recording: %v", err)
		}
		defer f.Close()
		in = f
	}

	proc, err := lap.NewProcessor(cfg.Core())
	if err != nil {
		log.Fatalf("lap processor: %v", err)
	}
	out := newSink(os.Stdout)
	svc := usecases.NewLapService(proc, out, out)

	stats, err := replay(context.Background(), in, svc)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	st := svc.Status()
	slog.Info("replay complete",
		"lines", stats.Lines,
		"malformed", stats.Malformed,
		"samples", st.Samples,
		"dropped", st.Dropped,
		"rejected", st.Rejected,
		"laps", st.LapCount,
		"actions", out.actions,
	)
}
