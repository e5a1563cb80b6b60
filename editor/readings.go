package editor

import (
	"fmt"

	"github.com/mensura/mensura"
	"golang.org/x/exp/slices"
)

func (o *op) location(id mensura.LocationID) (*mensura.Location, error) {
	l := o.voice.Location(id)
	if l == nil {
		return nil, fmt.Errorf("%w: location %d", mensura.ErrStaleLocation, id)
	}
	return l, nil
}

func (o *op) place(id mensura.EventID) int { return slices.Index(o.before, id) }

// CombineReadingWithNext merges location loc with the location that starts
// right after it. Every version gets a reading holding what it read in both
// locations; versions reading the same pair of readings share one.
func (e *Engine) CombineReadingWithNext(section, voice int, loc mensura.LocationID) (Result, error) {
	o := e.begin(section, voice)
	a, err := o.location(loc)
	if err != nil {
		return Result{}, e.refuse(err, "combine", section, voice, -1)
	}
	_, end := o.voice.Bounds(a)
	var b *mensura.Location
	if end+1 < o.voice.Events.Len() {
		if mk := o.voice.At(end + 1).VariantMarker(); mk != nil && !mk.End {
			b = o.voice.Location(mk.Location)
		}
	}
	if b == nil {
		return Result{}, e.refuse(fmt.Errorf("%w: location %d", mensura.ErrNotAdjacent, loc), "combine", section, voice, -1)
	}
	defA, defB := o.voice.DefaultContent(a), o.voice.DefaultContent(b)
	versions := slices.Clone(e.piece.Versions)
	if i := slices.Index(versions, e.current); i > 0 {
		versions = slices.Delete(versions, i, i+1)
		versions = slices.Insert(versions, 0, e.current)
	}
	type pair struct{ a, b *mensura.Reading }
	groups := map[pair]*mensura.Reading{}
	used := map[*mensura.Reading]bool{}
	var merged []*mensura.Reading
	take := func(r *mensura.Reading, def []mensura.EventID, record bool) []mensura.EventID {
		switch {
		case r == nil:
			return o.copyIDs(def, record)
		case used[r]:
			return o.copyIDs(r.Events.IDs(), false)
		}
		used[r] = true
		return r.Events.IDs()
	}
	for _, v := range versions {
		ra, _ := a.ReadingFor(v)
		rb, _ := b.ReadingFor(v)
		if ra == nil && rb == nil {
			continue
		}
		p := pair{ra, rb}
		if g, ok := groups[p]; ok {
			g.AddVersion(v)
			continue
		}
		g := mensura.NewReading(v)
		g.Error = ra != nil && ra.Error || rb != nil && rb.Error
		record := v == e.current
		g.Events.Append(take(ra, defA, record)...)
		g.Events.Append(take(rb, defB, record)...)
		groups[p] = g
		merged = append(merged, g)
	}
	for _, r := range append(slices.Clone(a.Readings), b.Readings...) {
		if !used[r] {
			o.discard(r.Events.IDs()...)
		}
	}
	for _, g := range merged {
		g.SortVersions(e.piece.Versions)
	}
	requested := o.place(a.Start)
	a.Readings = merged
	b.Readings = nil
	o.discard(o.voice.JoinLocations(a, b)...)
	o.tidy(a)
	return o.commit(Combined, requested, a.Start), nil
}

// ConsolidateReadings merges the readings of a location that have equal
// content. Running it twice changes nothing the second time.
func (e *Engine) ConsolidateReadings(section, voice int, loc mensura.LocationID) (Result, error) {
	o := e.begin(section, voice)
	l, err := o.location(loc)
	if err != nil {
		return Result{}, e.refuse(err, "consolidate", section, voice, -1)
	}
	outcome := NoAction
	if o.consolidate(l) {
		outcome = Combined
	}
	return o.commit(outcome, o.place(l.Start), l.Start), nil
}

// DeleteVariantReading removes ver from its reading at a location. A reading
// left without versions is deleted, and so is a location left without
// readings.
func (e *Engine) DeleteVariantReading(section, voice int, loc mensura.LocationID, ver *mensura.Version) (Result, error) {
	o := e.begin(section, voice)
	l, err := o.location(loc)
	if err != nil {
		return Result{}, e.refuse(err, "delete reading", section, voice, -1)
	}
	r, i := l.ReadingFor(ver)
	if r == nil {
		return Result{}, e.refuse(fmt.Errorf("%w: %q", mensura.ErrNoReading, ver.Name), "delete reading", section, voice, -1)
	}
	requested := o.place(l.Start)
	r.RemoveVersion(ver)
	outcome := NoAction
	if len(r.Versions()) == 0 {
		o.discard(l.RemoveReading(i).Events.IDs()...)
		outcome = Deleted
	}
	if _, removed := o.tidy(l); removed {
		outcome = Deleted
	}
	return o.commit(outcome, requested, l.Start), nil
}

// DeleteAllVariantReadings removes every reading of a location, and with it
// the location.
func (e *Engine) DeleteAllVariantReadings(section, voice int, loc mensura.LocationID) (Result, error) {
	o := e.begin(section, voice)
	l, err := o.location(loc)
	if err != nil {
		return Result{}, e.refuse(err, "delete readings", section, voice, -1)
	}
	requested := o.place(l.Start)
	for _, r := range l.Readings {
		o.discard(r.Events.IDs()...)
	}
	l.Readings = nil
	o.tidy(l)
	return o.commit(Deleted, requested, mensura.NoEvent), nil
}

// SetReadingAsDefault swaps reading index of a location into the default
// sequence. The previous default content becomes a reading of the versions
// that had no reading of their own, so that every version other than the
// default and those of the promoted reading keeps reading the same events.
func (e *Engine) SetReadingAsDefault(section, voice int, loc mensura.LocationID, index int) (Result, error) {
	o := e.begin(section, voice)
	l, err := o.location(loc)
	if err != nil {
		return Result{}, e.refuse(err, "promote reading", section, voice, -1)
	}
	if index < 0 || index >= len(l.Readings) {
		return Result{}, e.refuse(fmt.Errorf("%w: reading %d", mensura.ErrNoReading, index), "promote reading", section, voice, -1)
	}
	var orphans []*mensura.Version
	for _, v := range e.piece.Versions {
		if r, _ := l.ReadingFor(v); r == nil && !v.Default {
			orphans = append(orphans, v)
		}
	}
	requested := o.place(l.Start)
	promoted := l.RemoveReading(index)
	start, end := o.voice.Bounds(l)
	old := o.voice.Events.Splice(start+1, end, promoted.Events.IDs()...)
	if len(orphans) > 0 {
		r := mensura.NewReading(orphans...)
		r.Events.Append(old...)
		l.Readings = append(l.Readings, r)
	} else {
		o.discard(old...)
	}
	o.tidy(l)
	return o.commit(InDefault, requested, l.Start), nil
}

// AddVersionToReading makes ver read reading index of a location.
func (e *Engine) AddVersionToReading(section, voice int, loc mensura.LocationID, index int, ver *mensura.Version) (Result, error) {
	o := e.begin(section, voice)
	l, err := o.location(loc)
	if err != nil {
		return Result{}, e.refuse(err, "add version", section, voice, -1)
	}
	switch {
	case ver.Default:
		return Result{}, e.refuse(mensura.ErrDefaultVersion, "add version", section, voice, -1)
	case index < 0 || index >= len(l.Readings):
		return Result{}, e.refuse(fmt.Errorf("%w: reading %d", mensura.ErrNoReading, index), "add version", section, voice, -1)
	}
	if r, _ := l.ReadingFor(ver); r != nil {
		return Result{}, e.refuse(fmt.Errorf("%w: %q", mensura.ErrVersionHasReading, ver.Name), "add version", section, voice, -1)
	}
	r := l.Readings[index]
	r.AddVersion(ver)
	r.SortVersions(e.piece.Versions)
	return o.commit(NewReading, o.place(l.Start), l.Start), nil
}

// AddVersion adds a non-default version to the piece. It reads the default
// content everywhere.
func (e *Engine) AddVersion(name string) *mensura.Version {
	v := e.piece.AddVersion(name)
	e.logger.Debug("version added", "version", name)
	return v
}

// RemoveVersion removes ver from the piece and from every reading. If ver is
// active the default version becomes active.
func (e *Engine) RemoveVersion(ver *mensura.Version) error {
	if ver.Default {
		return e.refuse(mensura.ErrDefaultVersion, "remove version", -1, -1, -1)
	}
	if !slices.Contains(e.piece.Versions, ver) {
		return e.refuse(fmt.Errorf("%w: %q", mensura.ErrUnknownVersion, ver.Name), "remove version", -1, -1, -1)
	}
	for si, s := range e.piece.Sections {
		for vi, v := range s.Voices {
			if v == nil {
				continue
			}
			o := &op{e: e, key: voiceKey{si, vi}, voice: v, succ: map[mensura.EventID]mensura.EventID{}}
			for _, l := range v.Locations() {
				if r, i := l.ReadingFor(ver); r != nil {
					r.RemoveVersion(ver)
					if len(r.Versions()) == 0 {
						o.discard(l.RemoveReading(i).Events.IDs()...)
					}
					o.tidy(l)
				}
			}
			for _, id := range o.garbage {
				v.Free(id)
			}
		}
	}
	e.piece.RemoveVersionEntry(ver)
	if e.current == ver {
		e.current = e.piece.DefaultVersion()
	}
	e.refreshAll()
	e.logger.Debug("version removed", "version", ver.Name)
	return nil
}
