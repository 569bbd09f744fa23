package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/core/lap"
	"github.com/samirrijal/lapwatch/internal/core/ports"
	"github.com/samirrijal/lapwatch/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/lapwatch/internal/core/usecases")

// DefaultOutboundTimeout bounds a single downstream call.
const DefaultOutboundTimeout = 2 * time.Second

// LapService feeds position reports through a lap.Processor and hands
// its lap events and actions to the outside world.
type LapService struct {
	mu   sync.Mutex
	proc *lap.Processor

	dispatcher ports.ActionDispatcher
	events     ports.LapEventPublisher
	cache      ports.CacheService

	statusKey string
	statusTTL int
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

// LapServiceOption customises a LapService.
type LapServiceOption func(*LapService)

// WithStatusCache mirrors every status change into cache under key.
func WithStatusCache(cache ports.CacheService, key string, ttlSeconds int) LapServiceOption {
	return func(s *LapService) {
		s.cache = cache
		s.statusKey = key
		s.statusTTL = ttlSeconds
	}
}

// WithOutboundTimeout bounds each publish, dispatch and status write.
func WithOutboundTimeout(d time.Duration) LapServiceOption {
	return func(s *LapService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) LapServiceOption {
	return func(s *LapService) { s.now = now }
}

// WithIDGenerator overrides the event ID source, for tests.
func WithIDGenerator(gen func() string) LapServiceOption {
	return func(s *LapService) { s.newID = gen }
}

// NewLapService creates a new LapService. dispatcher and events may be nil.
func NewLapService(proc *lap.Processor, dispatcher ports.ActionDispatcher, events ports.LapEventPublisher, opts ...LapServiceOption) *LapService {
	s := &LapService{
		proc:       proc,
		dispatcher: dispatcher,
		events:     events,
		timeout:    DefaultOutboundTimeout,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// HandleReport applies one report. Only the state update is serialized,
// so the detector sees reports strictly in delivery order; publishing,
// dispatch and the status mirror run after the lock is released, each
// bounded by the outbound timeout. Downstream failures are logged and
// never returned; the report has already been counted.
func (s *LapService) HandleReport(ctx context.Context, r *domain.PositionReport) error {
	if r == nil {
		return fmt.Errorf("nil position report")
	}

	ctx, span := tracer.Start(ctx, "LapService.HandleReport")
	defer span.End()
	span.SetAttributes(attribute.Int64("sender_stamp", int64(r.SenderStamp)))

	s.mu.Lock()
	out := s.proc.Process(*r)
	now := s.now()
	st := s.proc.Status()
	var ev *domain.LapEvent
	if out.Lap != nil {
		e := *out.Lap
		e.ID = s.newID()
		e.CompletedAt = now
		ev = &e
	}
	var act *domain.ActionRequest
	if out.Action != nil {
		a := *out.Action
		a.ID = s.newID()
		a.RequestedAt = now
		act = &a
	}
	s.mu.Unlock()

	switch {
	case out.Captured != nil:
		slog.Info("reference point captured",
			"lat", out.Captured.Position.Lat,
			"lon", out.Captured.Position.Lon,
			"sender", out.Captured.SenderStamp,
		)
		metrics.ReferenceCaptured.Set(1)
	case out.Dropped != lap.NotDropped:
		slog.Debug("position report dropped", "reason", out.Dropped.String(), "sender", r.SenderStamp)
		metrics.ReportsDropped.WithLabelValues(out.Dropped.String()).Inc()
	case out.Rejected:
		slog.Debug("distance sample rejected", "sender", r.SenderStamp)
		metrics.SamplesRejected.Inc()
	case out.Distance != nil:
		slog.Debug("distance sample", "distance_m", *out.Distance, "zone", st.Zone.String())
		metrics.SamplesProcessed.Inc()
		metrics.LastDistance.Set(*out.Distance)
	}
	metrics.LapCount.Set(float64(st.LapCount))
	metrics.Zone.Set(float64(st.Zone))

	if ev != nil {
		span.AddEvent("lap_completed", trace.WithAttributes(attribute.Int64("lap_count", int64(ev.Count))))
		slog.Info("drove one more lap", "lap_count", ev.Count, "distance_m", ev.Distance)
		metrics.LapsCompleted.Inc()

		if s.events != nil {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			if err := s.events.PublishLap(pctx, ev); err != nil {
				slog.Warn("publish lap event failed", "lap_count", ev.Count, "error", err)
			}
			cancel()
		}
	}

	if act != nil {
		span.AddEvent("action_requested", trace.WithAttributes(attribute.String("address", act.Address)))
		slog.Info("requesting action", "address", act.Address, "command", act.Command, "lap_count", act.LapCount)

		if s.dispatcher != nil {
			dctx, cancel := context.WithTimeout(ctx, s.timeout)
			if err := s.dispatcher.Dispatch(dctx, act); err != nil {
				span.SetStatus(codes.Error, err.Error())
				metrics.ActionsDispatched.WithLabelValues("error").Inc()
				slog.Warn("dispatch action failed", "address", act.Address, "error", err)
			} else {
				metrics.ActionsDispatched.WithLabelValues("ok").Inc()
			}
			cancel()
		}
	}

	if s.cache != nil && (out.Captured != nil || ev != nil) {
		st.UpdatedAt = now
		s.storeStatus(ctx, st)
	}
	return nil
}

// Status returns a copy of the current lap state.
func (s *LapService) Status() domain.LapStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.proc.Status()
	st.UpdatedAt = s.now()
	return st
}

// Reference returns the captured start point, if any.
func (s *LapService) Reference() (domain.ReferencePoint, bool) {
	st := s.Status()
	if st.Reference == nil {
		return domain.ReferencePoint{}, false
	}
	return *st.Reference, true
}

// Thresholds returns the configured hysteresis band and action period.
func (s *LapService) Thresholds() (lap.Thresholds, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc.Thresholds(), s.proc.Period()
}

func (s *LapService) storeStatus(ctx context.Context, st domain.LapStatus) {
	data, err := json.Marshal(st)
	if err != nil {
		slog.Warn("encode lap status", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.cache.Set(ctx, s.statusKey, data, s.statusTTL); err != nil {
		slog.Warn("store lap status", "key", s.statusKey, "error", err)
	}
}
