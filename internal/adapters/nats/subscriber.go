package natsadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/core/ports"
	"github.com/samirrijal/lapwatch/internal/pkg/metrics"
)

var _ ports.PositionSubscriber = (*Subscriber)(nil)

// Subscriber implements ports.PositionSubscriber on a plain NATS
// subscription. A single subscription delivers its messages one at a
// time, in publish order, on one goroutine.
type Subscriber struct {
	conn    *nats.Conn
	subject string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS and will listen on subject.
func NewSubscriber(url, subject string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Subscriber{conn: conn, subject: subject}, nil
}

// SubscribePositions decodes every geodetic envelope and passes it to
// handler. Undecodable messages are logged and skipped.
func (s *Subscriber) SubscribePositions(ctx context.Context, handler func(ctx context.Context, r *domain.PositionReport) error) error {
	sub, err := s.conn.Subscribe(s.subject, func(msg *nats.Msg) {
		metrics.ReportsReceived.Inc()
		r, err := DecodeReading(msg.Data)
		if err != nil {
			metrics.ReportsMalformed.Inc()
			slog.Warn("skipping position envelope", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, r); err != nil {
			slog.Error("handle position report", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	// A dropped sample could hide a zone crossing.
	if err := sub.SetPendingLimits(-1, -1); err != nil {
		return fmt.Errorf("pending limits: %w", err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Conn exposes the underlying connection, e.g. for readiness checks.
func (s *Subscriber) Conn() *nats.Conn { return s.conn }

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

// RawConn creates a plain NATS connection that keeps reconnecting.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("lapwatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
