package editor

// Outcome classifies where an edit landed.
type Outcome int

const (
	// NoAction means the document did not change in a way visible to the
	// active version; only reading bookkeeping was updated.
	NoAction Outcome = iota
	// InDefault means the default sequence was edited directly.
	InDefault
	// NewVariant means a new variant location was created around the edit.
	NewVariant
	// Beginning, Middle and End place the edit within the active version's
	// reading.
	Beginning
	Middle
	End
	// Combined means readings or locations were merged.
	Combined
	// Deleted means the active version lost its reading, or the location was
	// removed.
	Deleted
	// NewReading means the active version got a reading at an existing
	// location, or shared content was copied into a new reading.
	NewReading
)

func (o Outcome) String() string {
	switch o {
	case NoAction:
		return "no action"
	case InDefault:
		return "in default"
	case NewVariant:
		return "new variant"
	case Beginning:
		return "beginning"
	case Middle:
		return "middle"
	case End:
		return "end"
	case Combined:
		return "combined"
	case Deleted:
		return "deleted"
	case NewReading:
		return "new reading"
	}
	return "unknown"
}

// Result describes a completed edit. Index is the index of the affected
// event after the edit: the inserted or modified event, or for deletions the
// event that followed the deleted one. Delta is Index minus the requested
// index. Second is the old index of a paired event deleted along with the
// target, or -1.
type Result struct {
	Outcome Outcome
	Index   int
	Delta   int
	Second  int

	remap []int
}

// Remap translates an index into the sequence before the edit into an index
// into the sequence after it. ok is false if the event no longer exists.
// Events copied into a new reading map to their copies.
func (r Result) Remap(old int) (index int, ok bool) {
	if old < 0 || old >= len(r.remap) || r.remap[old] < 0 {
		return -1, false
	}
	return r.remap[old], true
}

// follow returns the new index of the first surviving event at or after old.
func (r Result) follow(old int) int {
	for i := max(old, 0); i < len(r.remap); i++ {
		if r.remap[i] >= 0 {
			return r.remap[i]
		}
	}
	return -1
}

// then composes r with a later result s over the same voice.
func (r Result) then(s Result) Result {
	ret := s
	ret.remap = make([]int, len(r.remap))
	for i, n := range r.remap {
		ret.remap[i] = -1
		if n >= 0 && n < len(s.remap) {
			ret.remap[i] = s.remap[n]
		}
	}
	return ret
}

func identity(n int) Result {
	r := Result{Outcome: NoAction, Second: -1, remap: make([]int, n)}
	for i := range r.remap {
		r.remap[i] = i
	}
	return r
}
