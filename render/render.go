package render

import (
	"github.com/mensura/mensura"
)

type (
	// Options control how a view is turned into rendered events.
	Options struct {
		// ShowVariantMarkers renders variant markers instead of hiding them.
		ShowVariantMarkers bool `yaml:"showVariantMarkers"`
		// RestateClefs repeats the last clef after every line end.
		RestateClefs bool `yaml:"restateClefs"`
	}

	// RenderedEvent is one entry of the rendered sequence. Canonical is the
	// index of the event in the view, or -1 for events that exist only in
	// the rendering, such as restated clefs.
	RenderedEvent struct {
		Canonical int
		Event     *mensura.Event
		Line      int
		Restated  bool
	}

	// Rendering is a rendered view with the mapping between view indices and
	// rendered indices.
	Rendering struct {
		Events     []RenderedEvent
		toRendered []int
	}
)

// Render lays out a view. Rendered indices differ from view indices
// whenever markers are hidden or clefs are restated.
func Render(view *mensura.Materialized, opt Options) *Rendering {
	r := &Rendering{toRendered: make([]int, view.Len())}
	var clef *mensura.Event
	line := 0
	for i := 0; i < view.Len(); i++ {
		ev := view.Event(i)
		if view.At(i).IsMarker() && !opt.ShowVariantMarkers {
			r.toRendered[i] = -1
			continue
		}
		r.toRendered[i] = len(r.Events)
		r.Events = append(r.Events, RenderedEvent{Canonical: i, Event: ev, Line: line})
		switch ev.Kind() {
		case mensura.ClefKind:
			clef = ev
		case mensura.MultiKind:
			for _, c := range ev.Multi().Events {
				if c.Kind() == mensura.ClefKind && !c.Clef().Signature {
					clef = c
				}
			}
		case mensura.LineEndKind:
			line++
			if opt.RestateClefs && clef != nil {
				r.Events = append(r.Events, RenderedEvent{Canonical: -1, Event: clef, Line: line, Restated: true})
			}
		}
	}
	return r
}

func (r *Rendering) Len() int { return len(r.Events) }

// Rendered returns the rendered index of view index i. ok is false for
// hidden events.
func (r *Rendering) Rendered(i int) (int, bool) {
	if i < 0 || i >= len(r.toRendered) || r.toRendered[i] < 0 {
		return -1, false
	}
	return r.toRendered[i], true
}

// Canonical returns the view index of rendered index i. Synthesized events
// map to the view event they repeat the position of, the one before them.
func (r *Rendering) Canonical(i int) int {
	for ; i >= 0; i-- {
		if c := r.Events[i].Canonical; c >= 0 {
			return c
		}
	}
	return 0
}
