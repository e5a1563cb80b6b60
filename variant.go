package mensura

import (
	"slices"

	"github.com/google/uuid"
)

type (
	// Version is one manuscript source or edition of the piece. Exactly one
	// version of a piece is the default; the others differ from it only
	// where they have readings.
	Version struct {
		ID          uuid.UUID
		Name        string
		SourceName  string `yaml:",omitempty" json:",omitempty"`
		SourceID    int    `yaml:",omitempty" json:",omitempty"`
		Editor      string `yaml:",omitempty" json:",omitempty"`
		Description string `yaml:",omitempty" json:",omitempty"`
		Default     bool   `yaml:",omitempty" json:",omitempty"`
	}

	// Reading is an alternate fragment that the versions in its version set
	// read instead of the default content of a location.
	Reading struct {
		versions []*Version
		Events   *EventList
		// Error marks the reading as a scribal error rather than a variant.
		Error bool
	}

	LocationID int

	// Location is a variant location: the span between a start and an end
	// marker in the default sequence, together with the readings that
	// replace that span for some versions. No two readings of a location
	// share a version.
	Location struct {
		ID         LocationID
		Start, End EventID
		Readings   []*Reading
	}
)

func NewVersion(name string, isDefault bool) *Version {
	return &Version{ID: uuid.New(), Name: name, Default: isDefault}
}

func NewReading(versions ...*Version) *Reading {
	return &Reading{versions: slices.Clone(versions), Events: NewEventList()}
}

func (r *Reading) Versions() []*Version { return slices.Clone(r.versions) }

func (r *Reading) HasVersion(v *Version) bool { return slices.Contains(r.versions, v) }

// AddVersion adds v to the version set; it does nothing if v is already
// present.
func (r *Reading) AddVersion(v *Version) {
	if !r.HasVersion(v) {
		r.versions = append(r.versions, v)
	}
}

// RemoveVersion removes v from the version set and reports whether it was
// present.
func (r *Reading) RemoveVersion(v *Version) bool {
	i := slices.Index(r.versions, v)
	if i < 0 {
		return false
	}
	r.versions = slices.Delete(r.versions, i, i+1)
	return true
}

// SortVersions orders the version set by the order of versions in order.
func (r *Reading) SortVersions(order []*Version) {
	slices.SortStableFunc(r.versions, func(a, b *Version) int {
		return slices.Index(order, a) - slices.Index(order, b)
	})
}

// ReadingFor returns the reading of v at the location and its index, or nil
// and -1 if v reads the default content here.
func (l *Location) ReadingFor(v *Version) (*Reading, int) {
	if v == nil || v.Default {
		return nil, -1
	}
	for i, r := range l.Readings {
		if r.HasVersion(v) {
			return r, i
		}
	}
	return nil, -1
}

// RemoveReading removes the reading at index i.
func (l *Location) RemoveReading(i int) *Reading {
	r := l.Readings[i]
	l.Readings = slices.Delete(l.Readings, i, i+1)
	return r
}
