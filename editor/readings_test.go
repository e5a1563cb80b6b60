package editor_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mensura/mensura"
	"github.com/mensura/mensura/editor"
)

// withReadings wraps the event at index 2 of "clef G4 F4 E4" in a location
// and gives it one reading per entry of readings, keyed by a space separated
// list of version names. Without readings no location is created.
func withReadings(t *testing.T, versions []string, readings ...rd) (*editor.Engine, mensura.LocationID) {
	t.Helper()
	e := setup(t, "clef(C,C4) note(SB,G4) note(SB,F4) note(SB,E4)", versions...)
	if len(readings) == 0 {
		return e, 0
	}
	v := e.Piece().Voice(0, 0)
	l := v.NewLocation(2, 3)
	for _, x := range readings {
		var vers []*mensura.Version
		for _, n := range strings.Fields(x.names) {
			vers = append(vers, version(t, e, n))
		}
		r := mensura.NewReading(vers...)
		for _, ev := range mustParse(t, x.events) {
			r.Events.Append(v.Add(ev))
		}
		l.Readings = append(l.Readings, r)
	}
	valid(t, e)
	return e, l.ID
}

func mustParse(t *testing.T, s string) []*mensura.Event {
	t.Helper()
	evs, err := mensura.ParseEvents(s)
	if err != nil {
		t.Fatal(err)
	}
	return evs
}

type rd struct{ names, events string }

func TestConsolidateReadings(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B", "C"},
		rd{"A", "note(SB,G4)"}, rd{"B", "note(SB,G4)"}, rd{"C", "note(SB,G4)"})
	e.Piece().Voice(0, 0).Location(loc).Readings[2].Error = true

	r, err := e.ConsolidateReadings(0, 0, loc)
	mustResult(t, r, err, editor.Combined)
	l := e.Piece().Voice(0, 0).Location(loc)
	if len(l.Readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(l.Readings))
	}
	want := []*mensura.Version{version(t, e, "A"), version(t, e, "B")}
	if got := l.Readings[0].Versions(); !reflect.DeepEqual(got, want) {
		t.Errorf("merged versions = %v", got)
	}
	if !l.Readings[1].Error {
		t.Error("an error reading must not be merged into a plain one")
	}
	for _, name := range []string{"A", "B", "C"} {
		expect(t, name, reads(t, e, name), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,G4)", "note(SB,E4)", "end"})
	}
	valid(t, e)

	snapshot := mensura.Export(e.Piece())
	r, err = e.ConsolidateReadings(0, 0, loc)
	mustResult(t, r, err, editor.NoAction)
	if !reflect.DeepEqual(mensura.Export(e.Piece()), snapshot) {
		t.Error("a second consolidation changed the piece")
	}
}

func TestSetReadingAsDefault(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B", "C"},
		rd{"A", "note(SB,A4)"}, rd{"B", "note(SB,D4)"})
	before := map[string][]string{}
	for _, name := range []string{"A", "B", "C"} {
		before[name] = reads(t, e, name)
	}
	r, err := e.SetReadingAsDefault(0, 0, loc, 0)
	mustResult(t, r, err, editor.InDefault)
	expect(t, "Default", reads(t, e, "Default"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "note(SB,E4)", "end"})
	for name, want := range before {
		expect(t, name, reads(t, e, name), want)
	}
	l := e.Piece().Voice(0, 0).Location(loc)
	if l == nil || len(l.Readings) != 2 {
		t.Fatal("B and C should keep readings of their own")
	}
	if r, _ := l.ReadingFor(version(t, e, "C")); r == nil {
		t.Error("C did not get the previous default content")
	}
	if r, _ := l.ReadingFor(version(t, e, "A")); r != nil {
		t.Error("A should read the new default")
	}
	valid(t, e)
}

func TestSetReadingAsDefaultWithoutOrphans(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B"}, rd{"A B", "note(SB,A4) rest(M)"})
	r, err := e.SetReadingAsDefault(0, 0, loc, 0)
	mustResult(t, r, err, editor.InDefault)
	if e.Piece().Voice(0, 0).Location(loc) != nil {
		t.Error("a location without readings should be removed")
	}
	want := []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "rest(M)", "note(SB,E4)", "end"}
	for _, name := range []string{"Default", "A", "B"} {
		expect(t, name, reads(t, e, name), want)
	}
	valid(t, e)
}

func TestReadingRefusals(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B", "C"}, rd{"A", "note(SB,A4)"})
	snapshot := mensura.Export(e.Piece())
	tests := []struct {
		name string
		do   func() error
		want error
	}{
		{"add the default version", func() error {
			_, err := e.AddVersionToReading(0, 0, loc, 0, e.Piece().DefaultVersion())
			return err
		}, mensura.ErrDefaultVersion},
		{"add a version twice", func() error {
			_, err := e.AddVersionToReading(0, 0, loc, 0, version(t, e, "A"))
			return err
		}, mensura.ErrVersionHasReading},
		{"add to a missing reading", func() error {
			_, err := e.AddVersionToReading(0, 0, loc, 1, version(t, e, "B"))
			return err
		}, mensura.ErrNoReading},
		{"add to a missing location", func() error {
			_, err := e.AddVersionToReading(0, 0, loc+100, 0, version(t, e, "B"))
			return err
		}, mensura.ErrStaleLocation},
		{"delete a reading a version does not have", func() error {
			_, err := e.DeleteVariantReading(0, 0, loc, version(t, e, "C"))
			return err
		}, mensura.ErrNoReading},
		{"promote a missing reading", func() error {
			_, err := e.SetReadingAsDefault(0, 0, loc, 3)
			return err
		}, mensura.ErrNoReading},
		{"consolidate a missing location", func() error {
			_, err := e.ConsolidateReadings(0, 0, loc+100)
			return err
		}, mensura.ErrStaleLocation},
		{"combine with nothing", func() error {
			_, err := e.CombineReadingWithNext(0, 0, loc)
			return err
		}, mensura.ErrNotAdjacent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.do(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if !reflect.DeepEqual(mensura.Export(e.Piece()), snapshot) {
				t.Error("refused edit changed the piece")
			}
		})
	}
}

func TestDeleteAllVariantReadings(t *testing.T) {
	e, loc := withReadings(t, []string{"A", "B"}, rd{"A", "note(SB,A4)"}, rd{"B", "note(SB,D4)"})
	activate(t, e, "A")
	r, err := e.DeleteAllVariantReadings(0, 0, loc)
	mustResult(t, r, err, editor.Deleted)
	if len(e.Piece().Voice(0, 0).Locations()) != 0 {
		t.Fatal("the location was not removed")
	}
	for _, name := range []string{"A", "B"} {
		expect(t, name, reads(t, e, name), reads(t, e, "Default"))
	}
	expect(t, "view", view(e), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,F4)", "note(SB,E4)", "end"})
	valid(t, e)
}

func TestEngineAddVersion(t *testing.T) {
	e, _ := withReadings(t, []string{"A"}, rd{"A", "note(SB,A4)"})
	d := e.AddVersion("D")
	if got, err := e.Piece().Version("D"); err != nil || got != d {
		t.Fatalf("Version(D) = %v, %v", got, err)
	}
	expect(t, "D", reads(t, e, "D"), reads(t, e, "Default"))
}
