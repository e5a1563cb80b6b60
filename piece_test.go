package mensura_test

import (
	"errors"
	"testing"

	"github.com/mensura/mensura"
)

func mustEvents(t *testing.T, s string) []*mensura.Event {
	t.Helper()
	evs, err := mensura.ParseEvents(s)
	if err != nil {
		t.Fatalf("ParseEvents(%q): %v", s, err)
	}
	return evs
}

func eventStrings(evs []*mensura.Event) []string {
	ret := make([]string, len(evs))
	for i, e := range evs {
		ret[i] = e.String()
	}
	return ret
}

// variantPiece builds a two-voice piece with versions A, B and C. In the
// first voice A and B read a minim A4 instead of the F4, and C has an error
// reading that drops it. The second voice is silent.
func variantPiece(t *testing.T) *mensura.Piece {
	t.Helper()
	p := mensura.NewPiece("Ave", "Cantus", "Tenor")
	a, b, c := p.AddVersion("A"), p.AddVersion("B"), p.AddVersion("C")
	v := p.Voice(0, 0)
	v.Append(mustEvents(t, "clef(C,C4) note(SB,G4,corona) note(SB,F4) note(B,E4)")...)
	l := v.NewLocation(2, 3)
	r := mensura.NewReading(a, b)
	r.Events.Append(v.Add(mustEvents(t, "note(M,A4)")[0]))
	e := mensura.NewReading(c)
	e.Error = true
	l.Readings = append(l.Readings, r, e)
	p.Sections[0].Voices[1] = nil
	s := p.AddSection(mensura.Coloration{PrimaryColor: mensura.Red, PrimaryFill: mensura.Full})
	s.Voices[1].Append(mustEvents(t, `multi(clef(F,F3),clef(flat,B2,sig)) orig("Tenor") lineend(page)`)...)
	if err := p.Validate(); err != nil {
		t.Fatalf("fixture is invalid: %v", err)
	}
	return p
}

func TestNewPiece(t *testing.T) {
	p := mensura.NewPiece("Missa", "Cantus", "Altus", "Bassus")
	if len(p.Sections) != 1 || len(p.Sections[0].Voices) != 3 {
		t.Fatalf("unexpected layout: %d sections", len(p.Sections))
	}
	d := p.DefaultVersion()
	if d == nil || d.Name != mensura.DefaultVersionName || !d.Default {
		t.Fatalf("DefaultVersion() = %+v", d)
	}
	if v := p.Voice(0, 2); v == nil || v.Events.Len() != 1 || v.At(0).Kind() != mensura.SectionEndKind {
		t.Error("a new voice should hold only a section end")
	}
	if p.Voice(1, 0) != nil || p.Voice(0, 3) != nil {
		t.Error("Voice should return nil out of range")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPieceVersions(t *testing.T) {
	p := mensura.NewPiece("", "Cantus")
	a := p.AddVersion("A")
	if got, err := p.Version("A"); err != nil || got != a {
		t.Errorf("Version(A) = %v, %v", got, err)
	}
	if got, err := p.VersionByID(a.ID); err != nil || got != a {
		t.Errorf("VersionByID = %v, %v", got, err)
	}
	if _, err := p.Version("Z"); !errors.Is(err, mensura.ErrUnknownVersion) {
		t.Errorf("Version(Z) error = %v", err)
	}
	if p.RemoveVersionEntry(p.DefaultVersion()) {
		t.Error("the default version must not be removable")
	}
	if !p.RemoveVersionEntry(a) || len(p.Versions) != 1 {
		t.Error("RemoveVersionEntry(A) failed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *mensura.Piece)
	}{
		{"two defaults", func(p *mensura.Piece) { p.Versions[1].Default = true }},
		{"no default", func(p *mensura.Piece) { p.Versions[0].Default = false }},
		{"version read twice", func(p *mensura.Piece) {
			l := p.Voice(0, 0).Locations()[0]
			l.Readings[1].AddVersion(l.Readings[0].Versions()[0])
		}},
		{"default in a reading", func(p *mensura.Piece) {
			p.Voice(0, 0).Locations()[0].Readings[0].AddVersion(p.DefaultVersion())
		}},
		{"reading without versions", func(p *mensura.Piece) {
			r := p.Voice(0, 0).Locations()[0].Readings[1]
			r.RemoveVersion(r.Versions()[0])
		}},
		{"missing section end", func(p *mensura.Piece) {
			v := p.Voice(0, 0)
			v.Events.Delete(v.Events.Len() - 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := variantPiece(t)
			tt.mutate(p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() = nil, want an error")
			}
		})
	}
}

func TestPieceCopyIsDeep(t *testing.T) {
	p := variantPiece(t)
	c := p.Copy()
	a, _ := c.Version("A")
	if orig, _ := p.Version("A"); a == orig {
		t.Fatal("versions were not copied")
	}
	l := c.Voice(0, 0).Locations()[0]
	if r, _ := l.ReadingFor(a); r == nil {
		t.Fatal("copied reading does not refer to the copied version")
	}
	c.Voice(0, 0).At(1).SetPitch(mensura.Pitch{Letter: 'D', Octave: 5})
	if got := p.Voice(0, 0).At(1).String(); got != "note(SB,G4,corona)" {
		t.Errorf("original changed to %v", got)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("copy is invalid: %v", err)
	}
}
