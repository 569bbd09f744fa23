package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/core/ports"
)

// Subjects names the outbound subjects.
type Subjects struct {
	Action string // remote message requests
	Laps   string // lap completed events
}

var (
	_ ports.ActionDispatcher  = (*Publisher)(nil)
	_ ports.LapEventPublisher = (*Publisher)(nil)
)

// Publisher implements ports.ActionDispatcher and ports.LapEventPublisher.
// Lap events go through JetStream when it is enabled so late consumers
// can catch up; actions are always plain fire-and-forget publishes.
type Publisher struct {
	conn     *nats.Conn
	js       nats.JetStreamContext
	subjects Subjects
}

// NewPublisher connects to NATS. With jetStream set it also ensures a
// stream capturing the lap subject.
func NewPublisher(url string, subjects Subjects, jetStream bool) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	p := &Publisher{conn: conn, subjects: subjects}
	if !jetStream {
		return p, nil
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "LAP_EVENTS",
		Subjects:  []string{subjects.Laps},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	p.js = js
	return p, nil
}

// Dispatch publishes an action request. Delivery is not confirmed.
func (p *Publisher) Dispatch(ctx context.Context, req *domain.ActionRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subjects.Action, data)
}

// PublishLap publishes a lap completed event.
func (p *Publisher) PublishLap(ctx context.Context, ev *domain.LapEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if p.js != nil {
		_, err = p.js.Publish(p.subjects.Laps, data, nats.Context(ctx), nats.MsgId(ev.ID))
		return err
	}
	return p.conn.Publish(p.subjects.Laps, data)
}

// Conn exposes the underlying connection.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
