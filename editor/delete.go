package editor

import (
	"fmt"

	"github.com/mensura/mensura"
	"golang.org/x/exp/slices"
)

// Delete deletes the event at index of the active view.
//
// Deleting a variant marker between two adjacent locations combines them.
// Deleting any other marker removes the location under the default version,
// and only the active version's reading otherwise. Deleting one end of a
// lacuna deletes the other end too; Result.Second is its old index.
// Result.Index is the new index of the event that followed the deleted one.
func (e *Engine) Delete(section, voice, index int) (Result, error) {
	m := e.View(section, voice)
	s := m.At(index)
	if m.Event(index).Kind() == mensura.SectionEndKind {
		return Result{}, e.refuse(fmt.Errorf("%w: deleting section end", mensura.ErrProtectedEvent), "delete", section, voice, index)
	}
	if s.IsMarker() {
		return e.deleteMarker(section, voice, index)
	}
	indices := []int{index}
	partner := lacunaPartner(m, index)
	if partner >= 0 {
		indices = append(indices, partner)
	}
	lo, hi := slices.Min(indices), slices.Max(indices)
	o := e.begin(section, voice)
	var r Result
	switch {
	case s.Reading != nil || e.current.Default:
		outcome := InDefault
		if s.Reading != nil {
			outcome = positional(s.Index, s.Reading.Events.Len())
		}
		rd := s.Reading
		if rd != nil {
			rd = o.own(s.Location, rd)
		}
		o.remove(rd, indices, m)
		r = o.commit(o.settle(s.Location, outcome), index, mensura.NoEvent)
	default:
		t, err := o.eventsForModification(m, lo, hi)
		if err != nil {
			return Result{}, e.refuse(err, "delete", section, voice, index)
		}
		var pos []int
		for _, i := range indices {
			pos = append(pos, t.from+i-t.lo)
		}
		o.removePositions(t.list, pos)
		r = o.commit(o.settle(t.loc, NewReading), index, mensura.NoEvent)
	}
	r.Index = r.follow(index + 1)
	r.Delta = r.Index - index
	if partner >= 0 {
		r.Second = partner
	}
	return r, nil
}

func positional(pos, n int) Outcome {
	switch {
	case pos == 0:
		return Beginning
	case pos >= n-1:
		return End
	}
	return Middle
}

// remove deletes view slots that all live in the list of r, or in the
// default sequence when r is nil.
func (o *op) remove(r *mensura.Reading, indices []int, m *mensura.Materialized) {
	list := o.voice.Events
	if r != nil {
		list = r.Events
	}
	var pos []int
	for _, i := range indices {
		pos = append(pos, m.At(i).Index)
	}
	o.removePositions(list, pos)
}

// removePositions deletes list positions, last first, and clears the
// ligature of a note left without a note to ligate to.
func (o *op) removePositions(list *mensura.EventList, pos []int) {
	slices.Sort(pos)
	for k := len(pos) - 1; k >= 0; k-- {
		p := pos[k]
		o.discard(list.Delete(p))
		if p == 0 {
			continue
		}
		prev := o.voice.Event(list.At(p - 1)).Note()
		if prev == nil || prev.Ligature == mensura.NoLigature {
			continue
		}
		if p >= list.Len() || o.voice.Event(list.At(p)).Note() == nil {
			prev.Ligature = mensura.NoLigature
		}
	}
}

// lacunaPartner finds the other end of the lacuna at index within the same
// region of the view, or returns -1.
func lacunaPartner(m *mensura.Materialized, index int) int {
	lac := m.Event(index).Lacuna()
	if lac == nil {
		return -1
	}
	step := 1
	if lac.End {
		step = -1
	}
	home := m.At(index)
	depth := 0
	for i := index + step; i >= 0 && i < m.Len(); i += step {
		s := m.At(i)
		if s.IsMarker() || s.Location != home.Location || s.Reading != home.Reading {
			return -1
		}
		l := m.Event(i).Lacuna()
		if l == nil {
			continue
		}
		if l.End == lac.End {
			depth++
		} else if depth == 0 {
			return i
		} else {
			depth--
		}
	}
	return -1
}

func (e *Engine) deleteMarker(section, voice, index int) (Result, error) {
	m := e.View(section, voice)
	s := m.At(index)
	var first *mensura.Location
	switch {
	case s.IsEnd() && index+1 < m.Len() && m.At(index+1).IsStart():
		first = s.Location
	case s.IsStart() && index > 0 && m.At(index-1).IsEnd():
		first = m.At(index - 1).Location
	}
	if first != nil {
		r, err := e.CombineReadingWithNext(section, voice, first.ID)
		if err != nil {
			return Result{}, err
		}
		r.Index = r.follow(index + 1)
		r.Delta = r.Index - index
		return r, nil
	}
	l := s.Location
	if e.current.Default {
		r, err := e.DeleteAllVariantReadings(section, voice, l.ID)
		if err != nil {
			return Result{}, err
		}
		r.Index = r.follow(index + 1)
		r.Delta = r.Index - index
		return r, nil
	}
	o := e.begin(section, voice)
	outcome := NoAction
	if rd, i := l.ReadingFor(e.current); rd != nil {
		rd.RemoveVersion(e.current)
		if len(rd.Versions()) == 0 {
			o.discard(l.RemoveReading(i).Events.IDs()...)
		}
		if _, removed := o.tidy(l); removed {
			outcome = Deleted
		}
	}
	r := o.commit(outcome, index, mensura.NoEvent)
	r.Index = r.follow(index + 1)
	r.Delta = r.Index - index
	return r, nil
}

// DeleteRange deletes the events in [begin, end) of the active view, last
// first. Variant markers and the section end are skipped. Adjacent locations
// created along the way are combined into one. If any deletion is refused
// the voice is left unchanged.
func (e *Engine) DeleteRange(section, voice, begin, end int) (Result, error) {
	m := e.View(section, voice)
	if begin < 0 || end > m.Len() || begin > end {
		panic(fmt.Errorf("%w: delete range [%d,%d) of [0,%d)", mensura.ErrInvalidIndex, begin, end, m.Len()))
	}
	backup := e.backup(section, voice)
	existing := map[mensura.LocationID]bool{}
	for _, l := range e.voice(section, voice).Locations() {
		existing[l.ID] = true
	}
	total := identity(m.Len())
	for i := end - 1; i >= begin; i-- {
		cur, ok := total.Remap(i)
		if !ok {
			continue
		}
		v := e.View(section, voice)
		if v.At(cur).IsMarker() || v.Event(cur).Kind() == mensura.SectionEndKind {
			continue
		}
		r, err := e.Delete(section, voice, cur)
		if err != nil {
			e.restore(section, voice, backup)
			return Result{}, err
		}
		total = total.then(r)
	}
	for {
		l := e.nextCreatedPair(section, voice, existing)
		if l == nil {
			break
		}
		r, err := e.CombineReadingWithNext(section, voice, l.ID)
		if err != nil {
			e.restore(section, voice, backup)
			return Result{}, err
		}
		total = total.then(r)
	}
	total.Index = total.follow(end)
	if total.Index < 0 {
		total.Index = e.View(section, voice).Len() - 1
	}
	total.Delta = total.Index - begin
	return total, nil
}

// nextCreatedPair returns the first location not in existing that is
// directly followed by another location not in existing.
func (e *Engine) nextCreatedPair(section, voice int, existing map[mensura.LocationID]bool) *mensura.Location {
	v := e.voice(section, voice)
	for _, l := range v.Locations() {
		if existing[l.ID] {
			continue
		}
		_, end := v.Bounds(l)
		if end+1 >= v.Events.Len() {
			continue
		}
		if mk := v.At(end + 1).VariantMarker(); mk != nil && !mk.End && !existing[mk.Location] {
			return l
		}
	}
	return nil
}

func (e *Engine) backup(section, voice int) *mensura.Voice {
	return e.voice(section, voice).Copy(nil)
}

func (e *Engine) restore(section, voice int, v *mensura.Voice) {
	e.piece.Sections[section].Voices[voice] = v
	e.refresh(voiceKey{section, voice})
}
