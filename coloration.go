package mensura

import (
	"fmt"
	"strings"
)

type (
	// Color is an ink color.
	Color int

	// Fill is the way a note head is filled with ink.
	Fill int

	// Coloration controls how notes are inked. Plain notes use the primary
	// color and fill; colored notes, which alter the rhythmic value, use the
	// secondary ones.
	Coloration struct {
		PrimaryColor   Color
		PrimaryFill    Fill
		SecondaryColor Color
		SecondaryFill  Fill
	}
)

const (
	Black Color = iota
	Red
	Blue
	Green
	Yellow
)

const (
	Void Fill = iota
	Full
	HalfVoid
	HalfFull
)

var colorNames = [...]string{"black", "red", "blue", "green", "yellow"}
var fillNames = [...]string{"void", "full", "halfvoid", "halffull"}

// DefaultColoration is white mensural notation: void black heads, colored
// with full black.
var DefaultColoration = Coloration{
	PrimaryColor:   Black,
	PrimaryFill:    Void,
	SecondaryColor: Black,
	SecondaryFill:  Full,
}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	for i, n := range colorNames {
		if strings.EqualFold(n, string(b)) {
			*c = Color(i)
			return nil
		}
	}
	return fmt.Errorf("%w: color %q", ErrBadNotation, b)
}

func (f Fill) String() string {
	if f < 0 || int(f) >= len(fillNames) {
		return fmt.Sprintf("Fill(%d)", int(f))
	}
	return fillNames[f]
}

func (f Fill) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Fill) UnmarshalText(b []byte) error {
	for i, n := range fillNames {
		if strings.EqualFold(n, string(b)) {
			*f = Fill(i)
			return nil
		}
	}
	return fmt.Errorf("%w: fill %q", ErrBadNotation, b)
}

// Colored returns the color and fill of a note head with the given
// coloration flag.
func (c Coloration) Colored(colored bool) (Color, Fill) {
	if colored {
		return c.SecondaryColor, c.SecondaryFill
	}
	return c.PrimaryColor, c.PrimaryFill
}
