package lap

import (
	"errors"
	"fmt"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

const (
	DefaultPeriod        uint32 = 3
	DefaultActionAddress        = "0046705294558"
	DefaultActionCommand        = "undock"
)

var (
	ErrInvalidPeriod = errors.New("lap period must be positive")
	ErrInvalidAction = errors.New("action address and command are required")
)

// Trigger maps lap counts to action requests. It holds configuration
// only; OnLap has no side effects.
type Trigger struct {
	period  uint32
	address string
	command string
}

// NewTrigger returns a trigger firing every period laps.
func NewTrigger(period uint32, address, command string) (*Trigger, error) {
	if period == 0 {
		return nil, ErrInvalidPeriod
	}
	if address == "" || command == "" {
		return nil, fmt.Errorf("%w (address=%q, command=%q)", ErrInvalidAction, address, command)
	}
	return &Trigger{period: period, address: address, command: command}, nil
}

// OnLap returns an action when count is a positive multiple of the period.
func (t *Trigger) OnLap(count uint32) (domain.ActionRequest, bool) {
	if count == 0 || count%t.period != 0 {
		return domain.ActionRequest{}, false
	}
	return domain.ActionRequest{
		Address:  t.address,
		Command:  t.command,
		LapCount: count,
	}, true
}

// Period returns the number of laps between actions.
func (t *Trigger) Period() uint32 { return t.period }
