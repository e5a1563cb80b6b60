package render_test

import (
	"testing"

	"github.com/mensura/mensura"
	"github.com/mensura/mensura/editor"
	"github.com/mensura/mensura/render"
)

var _ editor.Renderer = (*render.Layout)(nil)

// lined returns a piece whose version A reads an A4 instead of the F4 after
// the line end.
func lined(t *testing.T) (*mensura.Piece, *mensura.Version) {
	t.Helper()
	p := mensura.NewPiece("Ave", "Cantus")
	a := p.AddVersion("A")
	evs, err := mensura.ParseEvents("clef(C,C4) note(SB,G4) lineend note(SB,F4)")
	if err != nil {
		t.Fatal(err)
	}
	v := p.Voice(0, 0)
	v.Append(evs...)
	l := v.NewLocation(3, 4)
	r := mensura.NewReading(a)
	n, err := mensura.ParseEvent("note(SB,A4)")
	if err != nil {
		t.Fatal(err)
	}
	r.Events.Append(v.Add(n))
	l.Readings = append(l.Readings, r)
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	return p, a
}

func TestRender(t *testing.T) {
	p, a := lined(t)
	view := p.Voice(0, 0).Materialize(a)
	tests := []struct {
		name     string
		opt      render.Options
		want     []string
		rendered map[int]int // view index to rendered index, -1 if hidden
	}{
		{"plain", render.Options{},
			[]string{"clef(C,C4)", "note(SB,G4)", "lineend", "note(SB,A4)", "end"},
			map[int]int{0: 0, 2: 2, 3: -1, 4: 3, 5: -1, 6: 4}},
		{"markers", render.Options{ShowVariantMarkers: true},
			[]string{"clef(C,C4)", "note(SB,G4)", "lineend", "variant(start)", "note(SB,A4)", "variant(end)", "end"},
			map[int]int{3: 3, 4: 4, 6: 6}},
		{"restated clefs", render.Options{RestateClefs: true},
			[]string{"clef(C,C4)", "note(SB,G4)", "lineend", "clef(C,C4)", "note(SB,A4)", "end"},
			map[int]int{2: 2, 3: -1, 4: 4, 6: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := render.Render(view, tt.opt)
			if r.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", r.Len(), len(tt.want))
			}
			for i, re := range r.Events {
				if got := re.Event.String(); got != tt.want[i] {
					t.Errorf("event %d = %v, want %v", i, got, tt.want[i])
				}
			}
			for vi, want := range tt.rendered {
				got, ok := r.Rendered(vi)
				if want < 0 {
					if ok {
						t.Errorf("Rendered(%d) = %d, want hidden", vi, got)
					}
					continue
				}
				if !ok || got != want {
					t.Errorf("Rendered(%d) = %d, %v, want %d", vi, got, ok, want)
				}
				if c := r.Canonical(want); c != vi {
					t.Errorf("Canonical(%d) = %d, want %d", want, c, vi)
				}
			}
		})
	}
}

func TestRestatedClef(t *testing.T) {
	p, a := lined(t)
	r := render.Render(p.Voice(0, 0).Materialize(a), render.Options{RestateClefs: true})
	re := r.Events[3]
	if !re.Restated || re.Canonical != -1 || re.Line != 1 {
		t.Errorf("restated clef = %+v", re)
	}
	if r.Events[1].Line != 0 || r.Events[4].Line != 1 {
		t.Error("line numbers do not follow the line end")
	}
	if c := r.Canonical(3); c != 2 {
		t.Errorf("Canonical(3) = %d, want the line end at 2", c)
	}
}

func TestLayout(t *testing.T) {
	p, a := lined(t)
	l := render.NewLayout(render.Options{})
	e := editor.New(p, editor.WithRenderer(l))
	if l.Rendering(0, 0) != nil {
		t.Fatal("rendered before any edit")
	}
	if err := e.SetCurrentVariantVersion(a); err != nil {
		t.Fatal(err)
	}
	if l.Rerenders() != 1 || l.Rendering(0, 0).Len() != 5 {
		t.Fatalf("after switching versions: %d rerenders", l.Rerenders())
	}
	n, err := mensura.ParseEvent("rest(M)")
	if err != nil {
		t.Fatal(err)
	}
	r, err := e.Insert(0, 0, 4, n)
	if err != nil {
		t.Fatal(err)
	}
	if l.Rerenders() != 2 {
		t.Errorf("Rerenders() = %d, want 2", l.Rerenders())
	}
	ri, ok := l.Rendering(0, 0).Rendered(r.Index)
	if !ok || l.Rendering(0, 0).Events[ri].Event.String() != "rest(M)" {
		t.Errorf("the inserted rest is not rendered at %d", ri)
	}
}

func TestRestatedClefFromMulti(t *testing.T) {
	p := mensura.NewPiece("Ave", "Cantus")
	evs, err := mensura.ParseEvents("multi(clef(C,C3),clef(flat,B3,sig)) note(SB,G4) lineend note(SB,F4)")
	if err != nil {
		t.Fatal(err)
	}
	p.Voice(0, 0).Append(evs...)
	r := render.Render(p.Voice(0, 0).Materialize(p.DefaultVersion()), render.Options{RestateClefs: true})
	if r.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", r.Len())
	}
	if re := r.Events[3]; !re.Restated || re.Event.String() != "clef(C,C3)" {
		t.Errorf("restated %v, want the clef alone", re.Event)
	}
}
