package mensura

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// Pitch is a diatonic pitch: a note letter and an octave number. Octaves
	// change between B and C, so that C4 is the step above B3. Pitch is also
	// used for staff positions of clefs, custodes and dots.
	Pitch struct {
		Letter byte
		Octave int
	}

	// NoteType is the mensural note shape.
	NoteType int

	// Proportion is a rational number I1/I2, used for note lengths and
	// proportion signs.
	Proportion struct {
		I1, I2 int
	}
)

const (
	Maxima NoteType = iota
	Longa
	Brevis
	Semibrevis
	Minima
	Semiminima
	Fusa
	Semifusa
)

var noteTypeNames = [...]string{"Mx", "L", "B", "SB", "M", "SM", "F", "SF"}

const letters = "CDEFGAB"

// Step returns the number of diatonic steps from C0.
func (p Pitch) Step() int {
	return p.Octave*7 + strings.IndexByte(letters, p.Letter)
}

// PitchFromStep is the inverse of Step.
func PitchFromStep(step int) Pitch {
	octave := step / 7
	i := step % 7
	if i < 0 {
		i += 7
		octave--
	}
	return Pitch{Letter: letters[i], Octave: octave}
}

// Offset returns the pitch moved by the given number of diatonic steps.
func (p Pitch) Offset(steps int) Pitch {
	return PitchFromStep(p.Step() + steps)
}

func (p Pitch) Valid() bool {
	return strings.IndexByte(letters, p.Letter) >= 0
}

func (p Pitch) String() string {
	if !p.Valid() {
		return "?"
	}
	return string(p.Letter) + strconv.Itoa(p.Octave)
}

func ParsePitch(s string) (Pitch, error) {
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("%w: pitch %q", ErrBadNotation, s)
	}
	letter := strings.ToUpper(s[:1])[0]
	if strings.IndexByte(letters, letter) < 0 {
		return Pitch{}, fmt.Errorf("%w: pitch letter %q", ErrBadNotation, s[:1])
	}
	octave, err := strconv.Atoi(s[1:])
	if err != nil {
		return Pitch{}, fmt.Errorf("%w: pitch octave %q", ErrBadNotation, s[1:])
	}
	return Pitch{Letter: letter, Octave: octave}, nil
}

func (p Pitch) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Pitch) UnmarshalText(b []byte) error {
	if s := string(b); s == "" || s == "?" {
		*p = Pitch{}
		return nil
	}
	v, err := ParsePitch(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (t NoteType) String() string {
	if t < 0 || int(t) >= len(noteTypeNames) {
		return "NoteType(" + strconv.Itoa(int(t)) + ")"
	}
	return noteTypeNames[t]
}

func ParseNoteType(s string) (NoteType, error) {
	for i, n := range noteTypeNames {
		if strings.EqualFold(n, s) {
			return NoteType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: note type %q", ErrBadNotation, s)
}

func (t NoteType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *NoteType) UnmarshalText(b []byte) error {
	v, err := ParseNoteType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DefaultLength returns the length of the note type in semibreves, assuming
// duple mensuration on every level.
func (t NoteType) DefaultLength() Proportion {
	switch {
	case t <= Semibrevis:
		return Proportion{1 << (Semibrevis - t), 1}
	default:
		return Proportion{1, 1 << (t - Semibrevis)}
	}
}

func (p Proportion) Float() float64 {
	if p.I2 == 0 {
		return 0
	}
	return float64(p.I1) / float64(p.I2)
}

func (p Proportion) String() string {
	return strconv.Itoa(p.I1) + "/" + strconv.Itoa(p.I2)
}

func ParseProportion(s string) (Proportion, error) {
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		b = "1"
	}
	i1, err1 := strconv.Atoi(a)
	i2, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil || i2 == 0 {
		return Proportion{}, fmt.Errorf("%w: proportion %q", ErrBadNotation, s)
	}
	return Proportion{i1, i2}, nil
}

func (p Proportion) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Proportion) UnmarshalText(b []byte) error {
	if string(b) == "0/0" {
		*p = Proportion{}
		return nil
	}
	v, err := ParseProportion(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
