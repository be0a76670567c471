package components

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusAlive, "alive"},
		{StatusStarved, "starved"},
		{StatusEaten, "eaten"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestZeroValueEnergyIsAlive(t *testing.T) {
	var e Energy
	if !e.Alive() {
		t.Error("zero-value Energy should be alive")
	}
	e.Status = StatusStarved
	if e.Alive() {
		t.Error("starved entity should not be alive")
	}
}

func TestPaceModeString(t *testing.T) {
	if PaceBurst.String() != "burst" || PaceRecover.String() != "recover" || PaceCruise.String() != "cruise" {
		t.Error("unexpected pace mode names")
	}
}
