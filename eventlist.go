package mensura

import (
	"fmt"
	"slices"
)

type (
	// EventID is a stable handle to an event stored in a voice's Arena. The
	// handle stays valid until the event is freed; NoEvent is never a valid
	// handle.
	EventID int32

	// Arena stores the events of one voice. Freed slots are recycled.
	Arena struct {
		events []*Event
		free   []EventID
	}

	// EventList is an ordered sequence of event handles: the default
	// sequence of a voice or the fragment of a reading. The position of each
	// handle is cached, and the cache is invalidated only from the first
	// index touched by a mutation, so ListPlace is O(1) between edits.
	EventList struct {
		ids   []EventID
		place map[EventID]int
		stale int // cached places at or after this index are unreliable
	}
)

const NoEvent EventID = 0

// Add stores an event and returns its handle.
func (a *Arena) Add(e *Event) EventID {
	if e == nil {
		panic("mensura: adding nil event to arena")
	}
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.events[id] = e
		return id
	}
	if len(a.events) == 0 {
		a.events = append(a.events, nil) // slot 0 is NoEvent
	}
	a.events = append(a.events, e)
	return EventID(len(a.events) - 1)
}

// Get returns the event behind a handle. It panics for freed or invalid
// handles.
func (a *Arena) Get(id EventID) *Event {
	if id <= NoEvent || int(id) >= len(a.events) || a.events[id] == nil {
		panic(fmt.Errorf("%w: event handle %d", ErrInvalidIndex, id))
	}
	return a.events[id]
}

// Free releases a handle. The handle may be returned again by a later Add.
func (a *Arena) Free(id EventID) {
	a.Get(id)
	a.events[id] = nil
	a.free = append(a.free, id)
}

// Live returns the number of stored events.
func (a *Arena) Live() int {
	if len(a.events) == 0 {
		return 0
	}
	return len(a.events) - 1 - len(a.free)
}

func NewEventList(ids ...EventID) *EventList {
	l := &EventList{ids: slices.Clone(ids)}
	l.place = make(map[EventID]int, len(ids))
	return l
}

func (l *EventList) Len() int { return len(l.ids) }

// At returns the handle at index. It panics if index is out of range.
func (l *EventList) At(index int) EventID {
	if index < 0 || index >= len(l.ids) {
		panic(fmt.Errorf("%w: get %d of [0,%d)", ErrInvalidIndex, index, len(l.ids)))
	}
	return l.ids[index]
}

// Insert inserts id before index. Index must be in [0, Len()].
func (l *EventList) Insert(index int, id EventID) {
	if index < 0 || index > len(l.ids) {
		panic(fmt.Errorf("%w: insert at %d of [0,%d]", ErrInvalidIndex, index, len(l.ids)))
	}
	l.ids = slices.Insert(l.ids, index, id)
	l.invalidate(index)
}

func (l *EventList) Append(ids ...EventID) {
	l.invalidate(len(l.ids))
	l.ids = append(l.ids, ids...)
}

// Delete removes and returns the handle at index.
func (l *EventList) Delete(index int) EventID {
	if index < 0 || index >= len(l.ids) {
		panic(fmt.Errorf("%w: delete %d of [0,%d)", ErrInvalidIndex, index, len(l.ids)))
	}
	id := l.ids[index]
	l.ids = slices.Delete(l.ids, index, index+1)
	delete(l.place, id)
	l.invalidate(index)
	return id
}

// Splice replaces ids[from:to] with the given handles and returns the removed
// ones.
func (l *EventList) Splice(from, to int, ids ...EventID) []EventID {
	if from < 0 || to < from || to > len(l.ids) {
		panic(fmt.Errorf("%w: splice [%d,%d) of [0,%d]", ErrInvalidIndex, from, to, len(l.ids)))
	}
	removed := slices.Clone(l.ids[from:to])
	for _, id := range removed {
		delete(l.place, id)
	}
	l.ids = slices.Replace(l.ids, from, to, ids...)
	l.invalidate(from)
	return removed
}

// ListPlace returns the index of id in the list, or -1.
func (l *EventList) ListPlace(id EventID) int {
	if p, ok := l.place[id]; ok && p < l.stale {
		return p
	}
	if l.stale < len(l.ids) {
		l.refresh()
		if p, ok := l.place[id]; ok {
			return p
		}
	}
	return -1
}

// IDs returns a copy of the handles in order.
func (l *EventList) IDs() []EventID { return slices.Clone(l.ids) }

// Slice returns a copy of the handles in [from, to).
func (l *EventList) Slice(from, to int) []EventID {
	if from < 0 || to < from || to > len(l.ids) {
		panic(fmt.Errorf("%w: slice [%d,%d) of [0,%d]", ErrInvalidIndex, from, to, len(l.ids)))
	}
	return slices.Clone(l.ids[from:to])
}

func (l *EventList) invalidate(index int) {
	if l.place == nil {
		l.place = make(map[EventID]int)
	}
	l.stale = min(l.stale, index)
}

func (l *EventList) refresh() {
	for i := l.stale; i < len(l.ids); i++ {
		l.place[l.ids[i]] = i
	}
	l.stale = len(l.ids)
}
