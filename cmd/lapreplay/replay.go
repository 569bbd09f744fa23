package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	natsadapter "github.com/samirrijal/lapwatch/internal/adapters/nats"
	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/core/usecases"
)

const maxLine = 1 << 20

type replayStats struct {
	Lines     int // non-blank envelopes read
	Malformed int
	// MalformedAt holds the 1-based file line of every skipped envelope.
	MalformedAt []int
}

// replay feeds every envelope in r to svc in file order. Blank lines are
// skipped and malformed ones are logged and counted, like on the bus.
func replay(ctx context.Context, r io.Reader, svc *usecases.LapService) (replayStats, error) {
	var stats replayStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		report, err := natsadapter.DecodeReading(line)
		if err != nil {
			stats.Malformed++
			stats.MalformedAt = append(stats.MalformedAt, lineNo)
			slog.Warn("skipping line", "line", lineNo, "error", err)
			continue
		}
		if err := svc.HandleReport(ctx, report); err != nil {
			return stats, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read recording: %w", err)
	}
	return stats, nil
}

// sink writes lap events and actions as tagged JSON lines.
type sink struct {
	mu      sync.Mutex
	enc     *json.Encoder
	laps    int
	actions int
}

func newSink(w io.Writer) *sink {
	return &sink{enc: json.NewEncoder(w)}
}

type sinkLine struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (s *sink) PublishLap(_ context.Context, ev *domain.LapEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.laps++
	return s.enc.Encode(sinkLine{Type: "lap_completed", Data: ev})
}

func (s *sink) Dispatch(_ context.Context, req *domain.ActionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions++
	return s.enc.Encode(sinkLine{Type: "remote_message_request", Data: req})
}
