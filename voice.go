package mensura

import (
	"fmt"
	"slices"
)

// Voice is the timeline of one voice within one section: the default
// sequence of event handles, the arena that owns the events, and the variant
// locations delimited by markers in the default sequence.
type Voice struct {
	Arena  Arena
	Events *EventList

	locations    map[LocationID]*Location
	nextLocation LocationID
}

// NewVoice returns a voice holding only a section end.
func NewVoice() *Voice {
	v := &Voice{Events: NewEventList(), locations: map[LocationID]*Location{}}
	v.Events.Append(v.Arena.Add(NewEvent(&SectionEnd{})))
	return v
}

func (v *Voice) Event(id EventID) *Event { return v.Arena.Get(id) }

// At returns the event at index of the default sequence.
func (v *Voice) At(index int) *Event { return v.Arena.Get(v.Events.At(index)) }

// Add stores e in the arena without placing it in any list.
func (v *Voice) Add(e *Event) EventID { return v.Arena.Add(e) }

// Free releases events that are no longer referenced by any list.
func (v *Voice) Free(ids ...EventID) {
	for _, id := range ids {
		v.Arena.Free(id)
	}
}

// Append adds events at the end of the default sequence, before the section
// end if there is one.
func (v *Voice) Append(events ...*Event) {
	at := v.Events.Len()
	if at > 0 && v.At(at-1).Kind() == SectionEndKind {
		at--
	}
	for _, e := range events {
		v.Events.Insert(at, v.Add(e))
		at++
	}
}

func (v *Voice) Location(id LocationID) *Location {
	return v.locations[id]
}

// Locations returns the variant locations in the order of the default
// sequence.
func (v *Voice) Locations() []*Location {
	ret := make([]*Location, 0, len(v.locations))
	for _, l := range v.locations {
		ret = append(ret, l)
	}
	slices.SortFunc(ret, func(a, b *Location) int {
		return v.Events.ListPlace(a.Start) - v.Events.ListPlace(b.Start)
	})
	return ret
}

// NewLocation wraps the default events in [from, to) with a new pair of
// variant markers and returns the empty location.
func (v *Voice) NewLocation(from, to int) *Location {
	if from < 0 || to < from || to > v.Events.Len() {
		panic(fmt.Errorf("%w: location [%d,%d) of [0,%d]", ErrInvalidIndex, from, to, v.Events.Len()))
	}
	if v.locations == nil {
		v.locations = map[LocationID]*Location{}
	}
	v.nextLocation++
	l := &Location{ID: v.nextLocation}
	l.Start = v.Add(NewEvent(&VariantMarker{Location: l.ID}))
	l.End = v.Add(NewEvent(&VariantMarker{Location: l.ID, End: true}))
	v.Events.Insert(to, l.End)
	v.Events.Insert(from, l.Start)
	v.locations[l.ID] = l
	return l
}

// RemoveLocation removes the markers of l from the default sequence and
// forgets the location. The default content stays in place. The markers are
// returned, not freed; readings are left alone.
func (v *Voice) RemoveLocation(l *Location) (start, end EventID) {
	v.Events.Delete(v.Events.ListPlace(l.End))
	v.Events.Delete(v.Events.ListPlace(l.Start))
	delete(v.locations, l.ID)
	return l.Start, l.End
}

// JoinLocations extends a over the adjacent location b: the end marker of a
// and the start marker of b are removed and returned, unfreed, and b is
// forgotten. The readings of both locations are left for the caller to merge.
func (v *Voice) JoinLocations(a, b *Location) []EventID {
	end := v.Events.ListPlace(a.End)
	if end < 0 || end+1 >= v.Events.Len() || v.Events.At(end+1) != b.Start {
		panic("mensura: joining locations that are not adjacent")
	}
	removed := v.Events.Splice(end, end+2)
	a.End = b.End
	v.Event(a.End).VariantMarker().Location = a.ID
	delete(v.locations, b.ID)
	return removed
}

// Bounds returns the default-sequence indices of the start and end markers.
func (v *Voice) Bounds(l *Location) (start, end int) {
	return v.Events.ListPlace(l.Start), v.Events.ListPlace(l.End)
}

// DefaultContent returns the handles between the markers of l.
func (v *Voice) DefaultContent(l *Location) []EventID {
	start, end := v.Bounds(l)
	return v.Events.Slice(start+1, end)
}

// Resolve returns the events of ids.
func (v *Voice) Resolve(ids []EventID) []*Event {
	ret := make([]*Event, len(ids))
	for i, id := range ids {
		ret[i] = v.Arena.Get(id)
	}
	return ret
}

// EqualContent reports whether two handle lists hold value-equal events.
func (v *Voice) EqualContent(a, b []EventID) bool {
	return EqualEvents(v.Resolve(a), v.Resolve(b))
}

// Copy makes a deep copy of the voice. Event handles and location IDs are
// preserved; Version pointers in readings are mapped through versions, which
// may be nil to keep them.
func (v *Voice) Copy(versions map[*Version]*Version) *Voice {
	ret := &Voice{
		Events:       NewEventList(v.Events.ids...),
		locations:    make(map[LocationID]*Location, len(v.locations)),
		nextLocation: v.nextLocation,
	}
	ret.Arena.events = make([]*Event, len(v.Arena.events))
	for i, e := range v.Arena.events {
		if e != nil {
			ret.Arena.events[i] = e.Copy()
		}
	}
	ret.Arena.free = slices.Clone(v.Arena.free)
	for id, l := range v.locations {
		nl := &Location{ID: l.ID, Start: l.Start, End: l.End}
		for _, r := range l.Readings {
			nr := &Reading{Events: NewEventList(r.Events.ids...), Error: r.Error}
			for _, ver := range r.versions {
				if m, ok := versions[ver]; ok {
					ver = m
				}
				nr.versions = append(nr.versions, ver)
			}
			nl.Readings = append(nl.Readings, nr)
		}
		ret.locations[id] = nl
	}
	return ret
}
