package editor_test

import (
	"errors"
	"testing"

	"github.com/mensura/mensura"
	"github.com/mensura/mensura/editor"
)

func TestInsertPositions(t *testing.T) {
	// The view of A is: clef G4 [ A4 ] E4 end.
	tests := []struct {
		name    string
		index   int
		outcome editor.Outcome
		want    []string
	}{
		{"outside locations", 1, editor.NewVariant, []string{"clef(C,C4)", "rest(M)", "note(SB,G4)", "note(SB,A4)", "note(SB,E4)", "end"}},
		{"before the start marker", 2, editor.Beginning, []string{"clef(C,C4)", "note(SB,G4)", "rest(M)", "note(SB,A4)", "note(SB,E4)", "end"}},
		{"first of the reading", 3, editor.Beginning, []string{"clef(C,C4)", "note(SB,G4)", "rest(M)", "note(SB,A4)", "note(SB,E4)", "end"}},
		{"before the end marker", 4, editor.End, []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "rest(M)", "note(SB,E4)", "end"}},
		{"after the end marker", 5, editor.End, []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "rest(M)", "note(SB,E4)", "end"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := withReadings(t, []string{"A", "B"}, rd{"A", "note(SB,A4)"})
			activate(t, e, "A")
			before := e.View(0, 0).IDs()
			r, err := e.Insert(0, 0, tt.index, parse(t, "rest(M)"))
			mustResult(t, r, err, tt.outcome)
			checkRemap(t, before, r, e.View(0, 0).IDs())
			if got := e.View(0, 0).Event(r.Index).String(); got != "rest(M)" {
				t.Errorf("Result.Index points at %v", got)
			}
			expect(t, "A", reads(t, e, "A"), tt.want)
			expect(t, "B", reads(t, e, "B"), reads(t, e, "Default"))
			valid(t, e)
		})
	}
}

func TestInsertMiddle(t *testing.T) {
	e, _ := withReadings(t, []string{"A"}, rd{"A", "note(SB,A4) note(SB,B4)"})
	activate(t, e, "A")
	r, err := e.Insert(0, 0, 4, parse(t, "dot(A4)"))
	mustResult(t, r, err, editor.Middle)
	expect(t, "A", reads(t, e, "A"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "dot(A4)", "note(SB,B4)", "note(SB,E4)", "end"})
}

func TestInsertCopiesDefaultContent(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B"}, rd{"B", "note(SB,D4)"})
	activate(t, e, "A")
	r, err := e.Insert(0, 0, 3, parse(t, "rest(M)"))
	mustResult(t, r, err, editor.Beginning)
	expect(t, "A", reads(t, e, "A"), []string{"clef(C,C4)", "note(SB,G4)", "rest(M)", "note(SB,F4)", "note(SB,E4)", "end"})
	expect(t, "Default", reads(t, e, "Default"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,F4)", "note(SB,E4)", "end"})
	if got := len(e.Piece().Voice(0, 0).Location(loc).Readings); got != 2 {
		t.Errorf("got %d readings, want 2", got)
	}
}

func TestInsertMergesEqualReadings(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B"}, rd{"B", "note(SB,D4) note(SB,F4)"})
	activate(t, e, "A")
	r, err := e.Insert(0, 0, 3, parse(t, "note(SB,D4)"))
	mustResult(t, r, err, editor.Combined)
	if r.Index != 3 {
		t.Errorf("Index = %d, want 3", r.Index)
	}
	l := e.Piece().Voice(0, 0).Location(loc)
	if len(l.Readings) != 1 || len(l.Readings[0].Versions()) != 2 {
		t.Fatalf("the readings of A and B were not merged")
	}
	expect(t, "A", reads(t, e, "A"), reads(t, e, "B"))
}

func TestInsertDefaultInsideLocation(t *testing.T) {
	e, loc := withReadings(t, []string{"A"}, rd{"A", "note(SB,A4)"})
	r, err := e.Insert(0, 0, 3, parse(t, "note(SB,A4)"))
	mustResult(t, r, err, editor.InDefault)
	expect(t, "Default", reads(t, e, "Default"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "note(SB,F4)", "note(SB,E4)", "end"})
	expect(t, "A", reads(t, e, "A"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "note(SB,E4)", "end"})
	if e.Piece().Voice(0, 0).Location(loc) == nil {
		t.Error("the location should survive")
	}
}

func TestInsertRefusals(t *testing.T) {
	e := setup(t, fourNotes, "A")
	for _, ev := range []*mensura.Event{parse(t, "end"), mensura.NewEvent(&mensura.VariantMarker{})} {
		if _, err := e.Insert(0, 0, 1, ev); !errors.Is(err, mensura.ErrProtectedEvent) {
			t.Errorf("inserting %v: err = %v, want ErrProtectedEvent", ev, err)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("inserting after the section end did not panic")
		}
	}()
	e.Insert(0, 0, e.View(0, 0).Len(), parse(t, "rest(M)"))
}

func TestInsertPrefersEndOfPreviousLocation(t *testing.T) {
	e := adjacentPiece(t, []string{"A"}, []string{"A"})
	activate(t, e, "A")
	// clef [ G4 ] [ A4 ] C4 D4 end
	r, err := e.Insert(0, 0, 4, parse(t, "rest(M)"))
	mustResult(t, r, err, editor.End)
	expect(t, "A", reads(t, e, "A"), []string{"clef(C,C4)", "note(SB,G4)", "rest(M)", "note(SB,A4)", "note(SB,C4)", "note(SB,D4)", "end"})
	l := e.Piece().Voice(0, 0).Locations()[0]
	if r, _ := l.ReadingFor(version(t, e, "A")); r == nil || r.Events.Len() != 2 {
		t.Error("the rest should end the first reading")
	}
}
