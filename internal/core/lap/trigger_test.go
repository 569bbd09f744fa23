package lap_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/lapwatch/internal/core/lap"
)

func TestTrigger_OnLap(t *testing.T) {
	trig, err := lap.NewTrigger(3, "0046705294558", "undock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		count uint32
		fire  bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, true},
		{4, false},
		{5, false},
		{6, true},
		{99, true},
		{100, false},
	}

	for _, tt := range tests {
		act, fire := trig.OnLap(tt.count)
		if fire != tt.fire {
			t.Errorf("OnLap(%d): expected fire=%v, got %v", tt.count, tt.fire, fire)
			continue
		}
		if !fire {
			continue
		}
		if act.Address != "0046705294558" || act.Command != "undock" {
			t.Errorf("OnLap(%d): unexpected action %+v", tt.count, act)
		}
		if act.LapCount != tt.count {
			t.Errorf("OnLap(%d): expected lap count on action, got %d", tt.count, act.LapCount)
		}
	}
}

func TestTrigger_OnLapIsIdempotent(t *testing.T) {
	trig, _ := lap.NewTrigger(3, "addr", "cmd")
	a1, ok1 := trig.OnLap(6)
	a2, ok2 := trig.OnLap(6)
	if !ok1 || !ok2 || a1 != a2 {
		t.Errorf("expected identical actions, got %+v/%v and %+v/%v", a1, ok1, a2, ok2)
	}
}

func TestTrigger_PeriodOne(t *testing.T) {
	trig, _ := lap.NewTrigger(1, "addr", "cmd")
	for n := uint32(1); n < 5; n++ {
		if _, fire := trig.OnLap(n); !fire {
			t.Errorf("period 1 must fire on lap %d", n)
		}
	}
}

func TestNewTrigger_Validation(t *testing.T) {
	if _, err := lap.NewTrigger(0, "a", "b"); !errors.Is(err, lap.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := lap.NewTrigger(3, "", "b"); !errors.Is(err, lap.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := lap.NewTrigger(3, "a", ""); !errors.Is(err, lap.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}
