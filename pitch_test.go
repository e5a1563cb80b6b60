package mensura_test

import (
	"errors"
	"testing"

	"github.com/mensura/mensura"
)

func TestPitchSteps(t *testing.T) {
	tests := []struct {
		from   string
		offset int
		want   string
	}{
		{"C4", 1, "D4"},
		{"B3", 1, "C4"},
		{"C4", -1, "B3"},
		{"G4", 7, "G5"},
		{"A0", -13, "B-2"},
		{"E4", 0, "E4"},
	}
	for _, tt := range tests {
		p, err := mensura.ParsePitch(tt.from)
		if err != nil {
			t.Fatalf("ParsePitch(%q): %v", tt.from, err)
		}
		if got := p.Offset(tt.offset).String(); got != tt.want {
			t.Errorf("%v.Offset(%d) = %v, want %v", tt.from, tt.offset, got, tt.want)
		}
	}
}

func TestParsePitchErrors(t *testing.T) {
	for _, s := range []string{"", "C", "H4", "Cx"} {
		if _, err := mensura.ParsePitch(s); !errors.Is(err, mensura.ErrBadNotation) {
			t.Errorf("ParsePitch(%q) error = %v, want ErrBadNotation", s, err)
		}
	}
}

func TestZeroValuesUnmarshal(t *testing.T) {
	var p mensura.Pitch
	b, _ := p.MarshalText()
	q := mensura.Pitch{Letter: 'C', Octave: 4}
	if err := q.UnmarshalText(b); err != nil || q != (mensura.Pitch{}) {
		t.Errorf("zero pitch did not survive text marshaling: %v, %v", q, err)
	}
	var r mensura.Proportion
	b, _ = r.MarshalText()
	s := mensura.Proportion{I1: 3, I2: 2}
	if err := s.UnmarshalText(b); err != nil || s != (mensura.Proportion{}) {
		t.Errorf("zero proportion did not survive text marshaling: %v, %v", s, err)
	}
}

func TestNoteTypeLengths(t *testing.T) {
	tests := []struct {
		t    mensura.NoteType
		want mensura.Proportion
	}{
		{mensura.Maxima, mensura.Proportion{I1: 8, I2: 1}},
		{mensura.Brevis, mensura.Proportion{I1: 2, I2: 1}},
		{mensura.Semibrevis, mensura.Proportion{I1: 1, I2: 1}},
		{mensura.Fusa, mensura.Proportion{I1: 1, I2: 8}},
	}
	for _, tt := range tests {
		if got := tt.t.DefaultLength(); got != tt.want {
			t.Errorf("%v.DefaultLength() = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestParseProportion(t *testing.T) {
	p, err := mensura.ParseProportion("3/2")
	if err != nil || p.Float() != 1.5 {
		t.Errorf("ParseProportion(3/2) = %v, %v", p, err)
	}
	if p, err := mensura.ParseProportion("3"); err != nil || p != (mensura.Proportion{I1: 3, I2: 1}) {
		t.Errorf("ParseProportion(3) = %v, %v", p, err)
	}
	if _, err := mensura.ParseProportion("1/0"); !errors.Is(err, mensura.ErrBadNotation) {
		t.Errorf("ParseProportion(1/0) error = %v", err)
	}
}
