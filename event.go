package mensura

import (
	"strconv"
	"strings"
)

type (
	// Kind is the type tag of an Event.
	Kind int

	// Payload is the kind-specific data of an Event. The set of payload types
	// is closed: every payload is one of the pointer types declared in this
	// package, and switching over them is exhaustive.
	Payload interface {
		Kind() Kind
		clone() Payload
		equal(Payload) bool
		args() []string
	}

	// Event is one musical occurrence in a voice. The kind of an Event is
	// fixed when it is created with NewEvent; only the payload fields and the
	// attributes can change afterwards.
	Event struct {
		Attributes
		payload Payload
	}

	// Attributes are shared by all event kinds. An empty Commentary means no
	// commentary.
	Attributes struct {
		Editorial  bool   `yaml:",omitempty" json:",omitempty"`
		Error      bool   `yaml:",omitempty" json:",omitempty"`
		Commentary string `yaml:",omitempty" json:",omitempty"`
		Corona     *Mark  `yaml:",omitempty" json:",omitempty"`
		Signum     *Mark  `yaml:",omitempty" json:",omitempty"`
	}

	// Mark is an optional corona (fermata) or signum congruentiae.
	Mark struct {
		Below bool `yaml:",omitempty" json:",omitempty"`
	}
)

const (
	ClefKind Kind = iota
	MensurationKind
	NoteKind
	RestKind
	DotKind
	OriginalTextKind
	ProportionKind
	ColorChangeKind
	CustosKind
	LineEndKind
	BarlineKind
	AnnotationKind
	LacunaKind
	ModernTextKind
	VariantMarkerKind
	MultiKind
	SectionEndKind
)

var kindNames = [...]string{
	"clef", "mens", "note", "rest", "dot", "orig", "prop", "color", "custos",
	"lineend", "barline", "annot", "lacuna", "text", "variant", "multi", "end",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// NewEvent creates an event with the given payload. The payload becomes owned
// by the event.
func NewEvent(p Payload) *Event {
	if p == nil {
		panic("mensura: nil event payload")
	}
	return &Event{payload: p}
}

func (e *Event) Kind() Kind       { return e.payload.Kind() }
func (e *Event) Payload() Payload { return e.payload }

// Copy makes a deep copy of the event.
func (e *Event) Copy() *Event {
	ret := &Event{Attributes: e.Attributes.copy(), payload: e.payload.clone()}
	return ret
}

// Equal reports whether two events have the same kind, payload and
// attributes.
func (e *Event) Equal(o *Event) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	return e.Attributes.equal(o.Attributes) && e.payload.equal(o.payload)
}

func (e *Event) String() string {
	args := e.payload.args()
	if e.Editorial {
		args = append(args, "ed")
	}
	if e.Error {
		args = append(args, "err")
	}
	if e.Corona != nil {
		args = append(args, markName("corona", e.Corona))
	}
	if e.Signum != nil {
		args = append(args, markName("signum", e.Signum))
	}
	if len(args) == 0 {
		return e.Kind().String()
	}
	return e.Kind().String() + "(" + strings.Join(args, ",") + ")"
}

func markName(name string, m *Mark) string {
	if m.Below {
		return name + "_below"
	}
	return name
}

func (e *Event) Note() *Note {
	n, _ := e.payload.(*Note)
	return n
}

func (e *Event) Clef() *Clef {
	c, _ := e.payload.(*Clef)
	return c
}

func (e *Event) VariantMarker() *VariantMarker {
	m, _ := e.payload.(*VariantMarker)
	return m
}

func (e *Event) Lacuna() *Lacuna {
	l, _ := e.payload.(*Lacuna)
	return l
}

func (e *Event) Multi() *Multi {
	m, _ := e.payload.(*Multi)
	return m
}

// IsMarker reports whether the event is a variant start or end marker.
func (e *Event) IsMarker() bool { return e.Kind() == VariantMarkerKind }

// Ligated reports whether the event is a note ligated with the next note.
func (e *Event) Ligated() bool {
	n := e.Note()
	return n != nil && n.Ligature != NoLigature
}

type (
	pitched interface {
		pitch() Pitch
		setPitch(Pitch)
	}

	lengthed interface {
		setLength(Proportion)
	}
)

// Pitch returns the pitch or staff position of the event, if it has one.
func (e *Event) Pitch() (Pitch, bool) {
	if p, ok := e.payload.(pitched); ok {
		return p.pitch(), true
	}
	return Pitch{}, false
}

// SetPitch sets the pitch of a pitched event. It returns false if the event
// kind has no pitch.
func (e *Event) SetPitch(p Pitch) bool {
	pe, ok := e.payload.(pitched)
	if !ok {
		return false
	}
	pe.setPitch(p)
	return true
}

// ModifyPitch moves a pitched event by offset diatonic steps.
func (e *Event) ModifyPitch(offset int) bool {
	pe, ok := e.payload.(pitched)
	if !ok {
		return false
	}
	pe.setPitch(pe.pitch().Offset(offset))
	return true
}

// SetLength sets the length of a note or rest.
func (e *Event) SetLength(l Proportion) bool {
	le, ok := e.payload.(lengthed)
	if !ok {
		return false
	}
	le.setLength(l)
	return true
}

func (e *Event) SetEditorial(v bool)       { e.Editorial = v }
func (e *Event) SetError(v bool)           { e.Error = v }
func (e *Event) SetCommentary(text string) { e.Commentary = text }

func (a Attributes) copy() Attributes {
	if a.Corona != nil {
		c := *a.Corona
		a.Corona = &c
	}
	if a.Signum != nil {
		s := *a.Signum
		a.Signum = &s
	}
	return a
}

func (a Attributes) equal(b Attributes) bool {
	return a.Editorial == b.Editorial && a.Error == b.Error &&
		a.Commentary == b.Commentary &&
		equalMark(a.Corona, b.Corona) && equalMark(a.Signum, b.Signum)
}

func equalMark(a, b *Mark) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// EqualEvents reports whether two event slices are value-equal.
func EqualEvents(a, b []*Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
