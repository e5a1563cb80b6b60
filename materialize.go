package mensura

import (
	"fmt"
)

type (
	// Slot describes where an event of a materialized sequence lives.
	Slot struct {
		ID EventID
		// Location is the variant location containing the event, or nil
		// outside of any location. The markers of a location belong to it.
		Location *Location
		// Reading is the reading supplying the event, or nil when the event
		// is in the default sequence.
		Reading *Reading
		// Index is the position of the event in its owning list: the
		// reading's events, or the default sequence.
		Index int
	}

	// Materialized is the sequence of a voice as read by one version: the
	// default sequence with the version's readings spliced in between the
	// variant markers. It is a read-only projection; rebuild it after every
	// change of the voice.
	Materialized struct {
		Version *Version
		voice   *Voice
		slots   []Slot
		place   map[EventID]int
	}
)

// IsMarker reports whether the slot holds a variant marker.
func (s Slot) IsMarker() bool {
	return s.Location != nil && (s.ID == s.Location.Start || s.ID == s.Location.End)
}

func (s Slot) IsStart() bool { return s.Location != nil && s.ID == s.Location.Start }
func (s Slot) IsEnd() bool   { return s.Location != nil && s.ID == s.Location.End }

// Materialize projects the voice for version ver. A nil or default version
// reads the default content everywhere.
func (v *Voice) Materialize(ver *Version) *Materialized {
	m := &Materialized{Version: ver, voice: v}
	n := v.Events.Len()
	m.slots = make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		id := v.Events.At(i)
		mk := v.Event(id).VariantMarker()
		if mk == nil {
			m.slots = append(m.slots, Slot{ID: id, Index: i})
			continue
		}
		l := v.locations[mk.Location]
		if l == nil || mk.End || l.Start != id {
			panic(fmt.Sprintf("mensura: stray variant marker at %d", i))
		}
		end := v.Events.ListPlace(l.End)
		m.slots = append(m.slots, Slot{ID: id, Location: l, Index: i})
		if r, _ := l.ReadingFor(ver); r != nil {
			for k, rid := range r.Events.ids {
				m.slots = append(m.slots, Slot{ID: rid, Location: l, Reading: r, Index: k})
			}
		} else {
			for j := i + 1; j < end; j++ {
				m.slots = append(m.slots, Slot{ID: v.Events.At(j), Location: l, Index: j})
			}
		}
		m.slots = append(m.slots, Slot{ID: l.End, Location: l, Index: end})
		i = end
	}
	m.place = make(map[EventID]int, len(m.slots))
	for i, s := range m.slots {
		m.place[s.ID] = i
	}
	return m
}

func (m *Materialized) Len() int { return len(m.slots) }

func (m *Materialized) Voice() *Voice { return m.voice }

// At returns the slot at index. It panics if index is out of range.
func (m *Materialized) At(index int) Slot {
	if index < 0 || index >= len(m.slots) {
		panic(fmt.Errorf("%w: materialized index %d of [0,%d)", ErrInvalidIndex, index, len(m.slots)))
	}
	return m.slots[index]
}

func (m *Materialized) Event(index int) *Event { return m.voice.Event(m.At(index).ID) }

// ListPlace returns the index of id in the sequence, or -1.
func (m *Materialized) ListPlace(id EventID) int {
	if p, ok := m.place[id]; ok {
		return p
	}
	return -1
}

func (m *Materialized) IDs() []EventID {
	ret := make([]EventID, len(m.slots))
	for i, s := range m.slots {
		ret[i] = s.ID
	}
	return ret
}

func (m *Materialized) Events() []*Event {
	return m.voice.Resolve(m.IDs())
}

// Content returns the events without variant markers, which is what a
// version reads.
func (m *Materialized) Content() []*Event {
	ret := make([]*Event, 0, len(m.slots))
	for _, s := range m.slots {
		if !s.IsMarker() {
			ret = append(ret, m.voice.Event(s.ID))
		}
	}
	return ret
}
