package led

import (
	"log/slog"
	"testing"
)

func TestForModel(t *testing.T) {
	tests := []struct {
		model      string
		wantSysfs  bool
		wantSystem string
	}{
		{"FriendlyElec NanoPC-T6", true, "sys_led"},
		{"Orange Pi 5 Plus", true, "green_led"},
		{"Raspberry Pi 4 Model B Rev 1.4", true, "ACT"},
		{"unknown", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			ctrl := forModel(tt.model, slog.Default())
			s, ok := ctrl.(*sysfs)
			if ok != tt.wantSysfs {
				t.Fatalf("sysfs = %v, want %v", ok, tt.wantSysfs)
			}
			if ok && s.leds[IndicatorLED] != tt.wantSystem {
				t.Errorf("system LED = %q, want %q", s.leds[IndicatorLED], tt.wantSystem)
			}
		})
	}
}

func TestNew(t *testing.T) {
	ctrl := New(nil)
	if ctrl == nil {
		t.Fatal("New() returned nil")
	}
	if ctrl.Available() == nil || ctrl.Patterns() == nil {
		t.Error("capability lists must be non-nil")
	}
}

func TestDetectBoard(t *testing.T) {
	if detectBoard() == "" {
		t.Error("detectBoard() returned empty string")
	}
}
