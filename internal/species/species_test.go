package species

import (
	"math"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"oak", "oak"},
		{"Oak", "oak"},
		{"OAK ", "oak"},
		{"oak tree", "oak"},
		{"pine", "pine"},
		{"sequoia", "generic"},
		{"", "generic"},
	}
	for _, tt := range tests {
		if got := Lookup(tt.in); got.Name != tt.want {
			t.Errorf("Lookup(%q).Name = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestCrownAllometry_RoundTrip(t *testing.T) {
	d := Lookup("oak")
	for _, dbh := range []float64{10, 40, 90, 150} {
		crown := d.CrownDiameterM(dbh)
		back := d.DBHFromCrownM(crown)
		if math.Abs(back-dbh) > 1e-6 {
			t.Errorf("allometry round trip for DBH %f: got %f", dbh, back)
		}
	}
}

func TestSoftClamp(t *testing.T) {
	d := Lookup("birch") // range [8, 90]

	if got := d.SoftClamp(40); got != 40 {
		t.Errorf("in-range value changed: %f", got)
	}
	// Out-of-range values move halfway to the bound, not onto it.
	if got := d.SoftClamp(2); got != 5 {
		t.Errorf("SoftClamp(2) = %f, want 5", got)
	}
	if got := d.SoftClamp(130); got != 110 {
		t.Errorf("SoftClamp(130) = %f, want 110", got)
	}
}
