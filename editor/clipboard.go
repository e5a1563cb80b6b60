package editor

import (
	"fmt"

	"github.com/mensura/mensura"
)

// CopyRange returns deep copies of the events in [begin, end) of the active
// view. Variant markers and the section end are left out.
func (e *Engine) CopyRange(section, voice, begin, end int) []*mensura.Event {
	m := e.View(section, voice)
	if begin < 0 || end > m.Len() || begin > end {
		panic(fmt.Errorf("%w: copy range [%d,%d) of [0,%d)", mensura.ErrInvalidIndex, begin, end, m.Len()))
	}
	var ret []*mensura.Event
	for i := begin; i < end; i++ {
		if m.At(i).IsMarker() || m.Event(i).Kind() == mensura.SectionEndKind {
			continue
		}
		ret = append(ret, m.Event(i).Copy())
	}
	return ret
}

// Paste inserts copies of events before index, one after the other.
// Result.Index is the index of the last pasted event. If an insertion is
// refused the voice is left unchanged.
func (e *Engine) Paste(section, voice, index int, events []*mensura.Event) (Result, error) {
	m := e.View(section, voice)
	total := identity(m.Len())
	total.Index = index
	if len(events) == 0 {
		return total, nil
	}
	backup := e.backup(section, voice)
	at := index
	for _, ev := range events {
		r, err := e.Insert(section, voice, at, ev.Copy())
		if err != nil {
			e.restore(section, voice, backup)
			return Result{}, err
		}
		total = total.then(r)
		at = r.Index + 1
	}
	total.Delta = total.Index - index - len(events) + 1
	return total, nil
}
