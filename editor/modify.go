package editor

import (
	"fmt"

	"github.com/mensura/mensura"
)

// target is a range of events that the active version may modify: positions
// [from, to] of list, which is either the default sequence or a reading
// owned by the active version.
type target struct {
	loc      *mensura.Location
	reading  *mensura.Reading
	list     *mensura.EventList
	from, to int
	lo, hi   int // the range in the view, widened to whole ligatures
	created  Outcome
}

// eventsForModification prepares the view range [lo, hi] for modification.
// Under the default version it returns the default sequence. Otherwise the
// range is widened to whole ligatures and must lie within one region: the
// version's own reading, the default content of one location, or default
// content outside of any location. Shared content is copied into a reading
// of the active version first, creating a location if needed. Nothing is
// changed when an error is returned.
func (o *op) eventsForModification(m *mensura.Materialized, lo, hi int) (target, error) {
	if lo < 0 || hi >= m.Len() || lo > hi {
		panic(fmt.Errorf("%w: modify [%d,%d] of [0,%d)", mensura.ErrInvalidIndex, lo, hi, m.Len()))
	}
	for i := lo; i <= hi; i++ {
		if m.At(i).IsMarker() || m.Event(i).Kind() == mensura.SectionEndKind {
			return target{}, fmt.Errorf("%w: %v cannot be modified", mensura.ErrProtectedEvent, m.Event(i).Kind())
		}
	}
	if o.e.current.Default {
		return target{loc: m.At(lo).Location, list: o.voice.Events, from: m.At(lo).Index, to: m.At(hi).Index, lo: lo, hi: hi, created: InDefault}, nil
	}
	for lo > 0 && m.Event(lo-1).Ligated() {
		lo--
	}
	for m.Event(hi).Ligated() && hi+1 < m.Len() {
		hi++
	}
	if p := lo - 1; p >= 0 && m.At(p).IsMarker() {
		for p >= 0 && m.At(p).IsMarker() {
			p--
		}
		if p >= 0 && m.Event(p).Ligated() {
			return target{}, fmt.Errorf("%w: ligature crosses a variant boundary", mensura.ErrInvalidVariantArrangement)
		}
	}
	first := m.At(lo)
	for i := lo; i <= hi; i++ {
		s := m.At(i)
		if s.IsMarker() || m.Event(i).Kind() == mensura.SectionEndKind ||
			s.Location != first.Location || s.Reading != first.Reading {
			return target{}, fmt.Errorf("%w: range [%d,%d] crosses a variant boundary", mensura.ErrInvalidVariantArrangement, lo, hi)
		}
	}
	t := target{loc: first.Location, reading: first.Reading, lo: lo, hi: hi, created: Middle}
	switch {
	case t.reading != nil:
		if r := o.own(t.loc, t.reading); r != t.reading {
			t.reading = r
			t.created = NewReading
		}
		t.from = first.Index
	case t.loc != nil:
		start, _ := o.voice.Bounds(t.loc)
		t.reading = o.newReading(t.loc, o.voice.DefaultContent(t.loc))
		t.from = first.Index - start - 1
		t.created = NewReading
	default:
		d0, d1 := first.Index, m.At(hi).Index
		t.loc = o.voice.NewLocation(d0, d1+1)
		t.reading = o.newReading(t.loc, o.voice.DefaultContent(t.loc))
		t.from = 0
		t.created = NewVariant
	}
	t.list = t.reading.Events
	t.to = t.from + hi - lo
	return t, nil
}

// newReading adds a reading of the active version to l, holding copies of
// ids. The copies replace the originals in the active view.
func (o *op) newReading(l *mensura.Location, ids []mensura.EventID) *mensura.Reading {
	r := mensura.NewReading(o.e.current)
	r.Events.Append(o.copyIDs(ids, true)...)
	l.Readings = append(l.Readings, r)
	return r
}

// own returns a reading of l that only the active version reads. A reading
// shared with other versions loses the active version to a copy of it.
func (o *op) own(l *mensura.Location, r *mensura.Reading) *mensura.Reading {
	if len(r.Versions()) < 2 {
		return r
	}
	r.RemoveVersion(o.e.current)
	c := o.newReading(l, r.Events.IDs())
	c.Error = r.Error
	return c
}

// settle tidies l after an edit and refines the outcome: Deleted when the
// location went away or the active version fell back to the default content,
// Combined when its reading was merged with another.
func (o *op) settle(l *mensura.Location, outcome Outcome) Outcome {
	if l == nil {
		return outcome
	}
	merged, removed := o.tidy(l)
	switch {
	case removed:
		return Deleted
	case o.e.current.Default:
		return outcome
	}
	if r, _ := l.ReadingFor(o.e.current); r == nil {
		return Deleted
	} else if merged && len(r.Versions()) > 1 {
		return Combined
	}
	return outcome
}

// events returns the events of the target in list order.
func (o *op) events(t target) []*mensura.Event {
	return o.voice.Resolve(t.list.Slice(t.from, t.to+1))
}

// GetEventForModification returns the event at index, ready to be modified
// for the active version. Under a non-default version shared events are
// copied into a reading first. Call Commit after changing the event.
func (e *Engine) GetEventForModification(section, voice, index int) (*mensura.Event, error) {
	evs, err := e.GetEventsForModification(section, voice, index, index)
	if err != nil {
		return nil, err
	}
	return evs[0], nil
}

// GetEventsForModification is GetEventForModification for the range
// [lo, hi].
func (e *Engine) GetEventsForModification(section, voice, lo, hi int) ([]*mensura.Event, error) {
	o := e.begin(section, voice)
	m := e.View(section, voice)
	t, err := o.eventsForModification(m, lo, hi)
	if err != nil {
		return nil, e.refuse(err, "modify", section, voice, lo)
	}
	evs := o.events(t)
	off := lo - t.lo
	o.commit(t.created, lo, mensura.NoEvent)
	return evs[off : off+hi-lo+1], nil
}

// Commit restores the reading invariants of every location of a voice and
// refreshes its view. Use it after modifying events obtained from
// GetEventForModification.
func (e *Engine) Commit(section, voice int) Result {
	o := e.begin(section, voice)
	for _, l := range o.voice.Locations() {
		o.tidy(l)
	}
	return o.commit(NoAction, 0, mensura.NoEvent)
}

// Modify applies fn to the event at index as the active version reads it.
// fn is first tried on a copy; if it returns false the event kind does not
// support the change and ErrWrongKind is returned without side effects.
func (e *Engine) Modify(section, voice, index int, fn func(*mensura.Event) bool) (Result, error) {
	m := e.View(section, voice)
	if !fn(m.Event(index).Copy()) {
		return Result{}, e.refuse(fmt.Errorf("%w: %v", mensura.ErrWrongKind, m.Event(index).Kind()), "modify", section, voice, index)
	}
	o := e.begin(section, voice)
	t, err := o.eventsForModification(m, index, index)
	if err != nil {
		return Result{}, e.refuse(err, "modify", section, voice, index)
	}
	id := t.list.At(t.from + index - t.lo)
	fn(o.voice.Event(id))
	return o.commit(o.settle(t.loc, t.created), index, id), nil
}

func (e *Engine) SetPitch(section, voice, index int, p mensura.Pitch) (Result, error) {
	return e.Modify(section, voice, index, func(ev *mensura.Event) bool { return ev.SetPitch(p) })
}

// ModifyPitch moves the pitch of the event at index by offset diatonic
// steps.
func (e *Engine) ModifyPitch(section, voice, index, offset int) (Result, error) {
	return e.Modify(section, voice, index, func(ev *mensura.Event) bool { return ev.ModifyPitch(offset) })
}

func (e *Engine) SetLength(section, voice, index int, l mensura.Proportion) (Result, error) {
	return e.Modify(section, voice, index, func(ev *mensura.Event) bool { return ev.SetLength(l) })
}

func (e *Engine) SetEditorial(section, voice, index int, v bool) (Result, error) {
	return e.Modify(section, voice, index, func(ev *mensura.Event) bool { ev.SetEditorial(v); return true })
}

func (e *Engine) SetError(section, voice, index int, v bool) (Result, error) {
	return e.Modify(section, voice, index, func(ev *mensura.Event) bool { ev.SetError(v); return true })
}

func (e *Engine) SetCommentary(section, voice, index int, text string) (Result, error) {
	return e.Modify(section, voice, index, func(ev *mensura.Event) bool { ev.SetCommentary(text); return true })
}

// Ligate joins the note at index with the next note. The two notes must be
// neighbors in the active view with no variant marker between them.
func (e *Engine) Ligate(section, voice, index int, lig mensura.Ligature) (Result, error) {
	m := e.View(section, voice)
	if m.Event(index).Note() == nil || index+1 >= m.Len() {
		return Result{}, e.refuse(fmt.Errorf("%w: ligating %v", mensura.ErrWrongKind, m.Event(index).Kind()), "ligate", section, voice, index)
	}
	if m.At(index + 1).IsMarker() {
		return Result{}, e.refuse(fmt.Errorf("%w: ligature would cross a variant marker", mensura.ErrInvalidVariantArrangement), "ligate", section, voice, index)
	}
	if m.Event(index+1).Note() == nil {
		return Result{}, e.refuse(fmt.Errorf("%w: ligating to %v", mensura.ErrWrongKind, m.Event(index+1).Kind()), "ligate", section, voice, index)
	}
	return e.setLigature(section, voice, index, index+1, lig)
}

// Unligate breaks the ligature between the note at index and the next note.
func (e *Engine) Unligate(section, voice, index int) (Result, error) {
	m := e.View(section, voice)
	if !m.Event(index).Ligated() {
		return Result{}, e.refuse(fmt.Errorf("%w: not a ligated note", mensura.ErrWrongKind), "unligate", section, voice, index)
	}
	return e.setLigature(section, voice, index, index, mensura.NoLigature)
}

func (e *Engine) setLigature(section, voice, lo, hi int, lig mensura.Ligature) (Result, error) {
	m := e.View(section, voice)
	o := e.begin(section, voice)
	t, err := o.eventsForModification(m, lo, hi)
	if err != nil {
		return Result{}, e.refuse(err, "ligature", section, voice, lo)
	}
	id := t.list.At(t.from + lo - t.lo)
	o.voice.Event(id).Note().Ligature = lig
	return o.commit(o.settle(t.loc, t.created), lo, id), nil
}

// SetReadingError marks the active version's reading at a location as a
// scribal error, or clears the mark.
func (e *Engine) SetReadingError(section, voice int, loc mensura.LocationID, isError bool) (Result, error) {
	o := e.begin(section, voice)
	l := o.voice.Location(loc)
	if l == nil {
		return Result{}, e.refuse(mensura.ErrStaleLocation, "reading error", section, voice, -1)
	}
	r, _ := l.ReadingFor(e.current)
	if r == nil {
		return Result{}, e.refuse(mensura.ErrNoReading, "reading error", section, voice, -1)
	}
	if r.Error == isError {
		return o.commit(NoAction, 0, mensura.NoEvent), nil
	}
	o.own(l, r).Error = isError
	o.tidy(l)
	return o.commit(NoAction, 0, mensura.NoEvent), nil
}
