package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/lapwatch/internal/core/usecases"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Transport reports whether a broker connection is up. *nats.Conn
// satisfies it.
type Transport interface {
	IsConnected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Laps *usecases.LapService
	// Positions is the connection position reports arrive on.
	Positions Transport
	// Outbound is the connection actions and lap events leave on.
	Outbound Transport
	// NATS is used to relay lap events over WebSocket.
	NATS *nats.Conn
	// LapSubject is the subject lap events are published on.
	LapSubject string
	Cache      Pinger
	Version    string
}
