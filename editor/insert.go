package editor

import (
	"fmt"

	"github.com/mensura/mensura"
)

// Insert inserts ev before index of the active view and takes ownership of
// it. Under a non-default version the event lands in the version's reading:
// an existing one at the location, a copy of the default content, or a new
// location created around the event. Result.Index is the index of ev in the
// new view.
//
// Index must be in [0, Len-1]: nothing can follow the section end.
func (e *Engine) Insert(section, voice, index int, ev *mensura.Event) (Result, error) {
	m := e.View(section, voice)
	if index < 0 || index >= m.Len() {
		panic(fmt.Errorf("%w: insert at %d of [0,%d)", mensura.ErrInvalidIndex, index, m.Len()))
	}
	switch ev.Kind() {
	case mensura.SectionEndKind, mensura.VariantMarkerKind:
		return Result{}, e.refuse(fmt.Errorf("%w: inserting %v", mensura.ErrProtectedEvent, ev.Kind()), "insert", section, voice, index)
	}
	o := e.begin(section, voice)
	id := o.voice.Add(ev)
	next := m.At(index)
	inside := next.Location != nil && !next.IsStart()
	if e.current.Default {
		o.voice.Events.Insert(next.Index, id)
		outcome := InDefault
		if inside {
			outcome = o.settle(next.Location, InDefault)
		}
		return o.commit(outcome, index, id), nil
	}
	var prev mensura.Slot
	if index > 0 {
		prev = m.At(index - 1)
	}
	switch {
	case inside:
		l := next.Location
		r, _ := l.ReadingFor(e.current)
		pos := 0
		outcome := Middle
		if r == nil {
			start, _ := o.voice.Bounds(l)
			r = o.newReading(l, o.voice.DefaultContent(l))
			if !next.IsEnd() {
				pos = next.Index - start - 1
			} else {
				pos = r.Events.Len()
			}
		} else {
			r = o.own(l, r)
			pos = next.Index
			if next.IsEnd() {
				pos = r.Events.Len()
			}
		}
		switch {
		case prev.IsStart():
			outcome = Beginning
		case next.IsEnd():
			outcome = End
		}
		r.Events.Insert(pos, id)
		return o.commit(o.settle(l, outcome), index, id), nil
	case prev.IsEnd() && o.hasReading(prev.Location):
		r, _ := prev.Location.ReadingFor(e.current)
		o.own(prev.Location, r).Events.Append(id)
		return o.commit(o.settle(prev.Location, End), index, id), nil
	case next.IsStart() && o.hasReading(next.Location):
		r, _ := next.Location.ReadingFor(e.current)
		o.own(next.Location, r).Events.Insert(0, id)
		return o.commit(o.settle(next.Location, Beginning), index, id), nil
	}
	l := o.voice.NewLocation(next.Index, next.Index)
	r := mensura.NewReading(e.current)
	r.Events.Append(id)
	l.Readings = append(l.Readings, r)
	return o.commit(o.settle(l, NewVariant), index, id), nil
}

func (o *op) hasReading(l *mensura.Location) bool {
	r, _ := l.ReadingFor(o.e.current)
	return r != nil
}
