package mensura

import (
	"strconv"
)

type (
	ClefType     int
	Accidental   int
	Ligature     int
	MensuralSign int

	Clef struct {
		Type      ClefType
		Pitch     Pitch
		Signature bool `yaml:",omitempty" json:",omitempty"`
	}

	// Mensuration is a mensuration sign. Tempus, Prolatio and the modus
	// levels are 2 (imperfect) or 3 (perfect); zero means unspecified.
	Mensuration struct {
		Sign       MensuralSign
		Dotted     bool `yaml:",omitempty" json:",omitempty"`
		Stroke     bool `yaml:",omitempty" json:",omitempty"`
		Reversed   bool `yaml:",omitempty" json:",omitempty"`
		Number     int  `yaml:",omitempty" json:",omitempty"`
		Tempus     int  `yaml:",omitempty" json:",omitempty"`
		Prolatio   int  `yaml:",omitempty" json:",omitempty"`
		ModusMinor int  `yaml:",omitempty" json:",omitempty"`
		ModusMaior int  `yaml:",omitempty" json:",omitempty"`
	}

	// Note is a sounding note. Ligature other than NoLigature joins the note
	// with the following note.
	Note struct {
		Type       NoteType
		Pitch      Pitch
		Length     Proportion
		Accidental Accidental `yaml:",omitempty" json:",omitempty"`
		Ligature   Ligature   `yaml:",omitempty" json:",omitempty"`
		Colored    bool       `yaml:",omitempty" json:",omitempty"`
		StemDown   bool       `yaml:",omitempty" json:",omitempty"`
	}

	// Rest occupies Line (counted from the bottom staff line) and, for long
	// rests, NumLines spaces.
	Rest struct {
		Type     NoteType
		Length   Proportion
		Line     int `yaml:",omitempty" json:",omitempty"`
		NumLines int `yaml:",omitempty" json:",omitempty"`
	}

	Dot struct {
		Pitch Pitch
	}

	// OriginalText is text as it appears in the source, e.g. an incipit.
	OriginalText struct {
		Text string
	}

	// ProportionChange is a proportion sign such as 3/2.
	ProportionChange struct {
		Value Proportion
	}

	ColorChange struct {
		Coloration Coloration
	}

	Custos struct {
		Pitch Pitch
	}

	LineEnd struct {
		PageEnd bool `yaml:",omitempty" json:",omitempty"`
	}

	Barline struct {
		NumLines int  `yaml:",omitempty" json:",omitempty"`
		Repeat   bool `yaml:",omitempty" json:",omitempty"`
	}

	Annotation struct {
		Text  string
		Pitch Pitch
	}

	// Lacuna marks the beginning or the end of a gap in the source. Begin and
	// end markers come in pairs.
	Lacuna struct {
		End bool `yaml:",omitempty" json:",omitempty"`
	}

	// ModernText is editorial text, such as underlay added by the editor.
	ModernText struct {
		Text string
	}

	// VariantMarker delimits a variant location in the default sequence.
	VariantMarker struct {
		End      bool
		Location LocationID
	}

	// Multi is a set of simultaneous events, e.g. a clef with its
	// signature flats.
	Multi struct {
		Events []*Event
	}

	SectionEnd struct{}
)

const (
	ClefC ClefType = iota
	ClefF
	ClefG
	ClefFlat
	ClefSharp
)

const (
	NoAccidental Accidental = iota
	Flat
	Sharp
	Natural
)

const (
	NoLigature Ligature = iota
	Recta
	Obliqua
)

const (
	SignO MensuralSign = iota
	SignC
)

var clefNames = [...]string{"C", "F", "G", "flat", "sharp"}
var accidentalNames = [...]string{"", "flat", "sharp", "natural"}
var ligatureNames = [...]string{"", "lig", "obl"}
var signNames = [...]string{"O", "C"}

func (t ClefType) String() string     { return nameOf(clefNames[:], int(t)) }
func (a Accidental) String() string   { return nameOf(accidentalNames[:], int(a)) }
func (l Ligature) String() string     { return nameOf(ligatureNames[:], int(l)) }
func (s MensuralSign) String() string { return nameOf(signNames[:], int(s)) }

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return strconv.Itoa(i)
	}
	return names[i]
}

func ptr[T any](v T) *T { return &v }

func same[T comparable](a *T, b Payload) bool {
	o, ok := any(b).(*T)
	return ok && *a == *o
}

func (*Clef) Kind() Kind             { return ClefKind }
func (*Mensuration) Kind() Kind      { return MensurationKind }
func (*Note) Kind() Kind             { return NoteKind }
func (*Rest) Kind() Kind             { return RestKind }
func (*Dot) Kind() Kind              { return DotKind }
func (*OriginalText) Kind() Kind     { return OriginalTextKind }
func (*ProportionChange) Kind() Kind { return ProportionKind }
func (*ColorChange) Kind() Kind      { return ColorChangeKind }
func (*Custos) Kind() Kind           { return CustosKind }
func (*LineEnd) Kind() Kind          { return LineEndKind }
func (*Barline) Kind() Kind          { return BarlineKind }
func (*Annotation) Kind() Kind       { return AnnotationKind }
func (*Lacuna) Kind() Kind           { return LacunaKind }
func (*ModernText) Kind() Kind       { return ModernTextKind }
func (*VariantMarker) Kind() Kind    { return VariantMarkerKind }
func (*Multi) Kind() Kind            { return MultiKind }
func (*SectionEnd) Kind() Kind       { return SectionEndKind }

func (p *Clef) clone() Payload             { return ptr(*p) }
func (p *Mensuration) clone() Payload      { return ptr(*p) }
func (p *Note) clone() Payload             { return ptr(*p) }
func (p *Rest) clone() Payload             { return ptr(*p) }
func (p *Dot) clone() Payload              { return ptr(*p) }
func (p *OriginalText) clone() Payload     { return ptr(*p) }
func (p *ProportionChange) clone() Payload { return ptr(*p) }
func (p *ColorChange) clone() Payload      { return ptr(*p) }
func (p *Custos) clone() Payload           { return ptr(*p) }
func (p *LineEnd) clone() Payload          { return ptr(*p) }
func (p *Barline) clone() Payload          { return ptr(*p) }
func (p *Annotation) clone() Payload       { return ptr(*p) }
func (p *Lacuna) clone() Payload           { return ptr(*p) }
func (p *ModernText) clone() Payload       { return ptr(*p) }
func (p *VariantMarker) clone() Payload    { return ptr(*p) }
func (p *SectionEnd) clone() Payload       { return &SectionEnd{} }

func (p *Multi) clone() Payload {
	events := make([]*Event, len(p.Events))
	for i, e := range p.Events {
		events[i] = e.Copy()
	}
	return &Multi{Events: events}
}

func (p *Clef) equal(o Payload) bool             { return same(p, o) }
func (p *Mensuration) equal(o Payload) bool      { return same(p, o) }
func (p *Note) equal(o Payload) bool             { return same(p, o) }
func (p *Rest) equal(o Payload) bool             { return same(p, o) }
func (p *Dot) equal(o Payload) bool              { return same(p, o) }
func (p *OriginalText) equal(o Payload) bool     { return same(p, o) }
func (p *ProportionChange) equal(o Payload) bool { return same(p, o) }
func (p *ColorChange) equal(o Payload) bool      { return same(p, o) }
func (p *Custos) equal(o Payload) bool           { return same(p, o) }
func (p *LineEnd) equal(o Payload) bool          { return same(p, o) }
func (p *Barline) equal(o Payload) bool          { return same(p, o) }
func (p *Annotation) equal(o Payload) bool       { return same(p, o) }
func (p *Lacuna) equal(o Payload) bool           { return same(p, o) }
func (p *ModernText) equal(o Payload) bool       { return same(p, o) }
func (p *SectionEnd) equal(o Payload) bool       { return same(p, o) }

// Markers of different locations are equal when they delimit the same side.
func (p *VariantMarker) equal(o Payload) bool {
	m, ok := o.(*VariantMarker)
	return ok && m.End == p.End
}

func (p *Multi) equal(o Payload) bool {
	m, ok := o.(*Multi)
	return ok && EqualEvents(p.Events, m.Events)
}

func (p *Note) pitch() Pitch           { return p.Pitch }
func (p *Note) setPitch(v Pitch)       { p.Pitch = v }
func (p *Clef) pitch() Pitch           { return p.Pitch }
func (p *Clef) setPitch(v Pitch)       { p.Pitch = v }
func (p *Custos) pitch() Pitch         { return p.Pitch }
func (p *Custos) setPitch(v Pitch)     { p.Pitch = v }
func (p *Dot) pitch() Pitch            { return p.Pitch }
func (p *Dot) setPitch(v Pitch)        { p.Pitch = v }
func (p *Annotation) pitch() Pitch     { return p.Pitch }
func (p *Annotation) setPitch(v Pitch) { p.Pitch = v }

func (p *Note) setLength(l Proportion) { p.Length = l }
func (p *Rest) setLength(l Proportion) { p.Length = l }

func (p *Clef) args() []string {
	ret := []string{p.Type.String(), p.Pitch.String()}
	if p.Signature {
		ret = append(ret, "sig")
	}
	return ret
}

func (p *Mensuration) args() []string {
	ret := []string{p.Sign.String()}
	if p.Dotted {
		ret = append(ret, "dot")
	}
	if p.Stroke {
		ret = append(ret, "stroke")
	}
	if p.Reversed {
		ret = append(ret, "rev")
	}
	if p.Number != 0 {
		ret = append(ret, strconv.Itoa(p.Number))
	}
	return ret
}

func (p *Note) args() []string {
	ret := []string{p.Type.String(), p.Pitch.String()}
	if p.Length != p.Type.DefaultLength() {
		ret = append(ret, p.Length.String())
	}
	if p.Ligature != NoLigature {
		ret = append(ret, p.Ligature.String())
	}
	if p.Colored {
		ret = append(ret, "col")
	}
	if p.Accidental != NoAccidental {
		ret = append(ret, p.Accidental.String())
	}
	if p.StemDown {
		ret = append(ret, "down")
	}
	return ret
}

func (p *Rest) args() []string {
	ret := []string{p.Type.String()}
	if p.Length != p.Type.DefaultLength() {
		ret = append(ret, p.Length.String())
	}
	if p.Line != 0 {
		ret = append(ret, "line"+strconv.Itoa(p.Line))
	}
	if p.NumLines != 0 {
		ret = append(ret, "lines"+strconv.Itoa(p.NumLines))
	}
	return ret
}

func (p *Dot) args() []string              { return []string{p.Pitch.String()} }
func (p *OriginalText) args() []string     { return []string{strconv.Quote(p.Text)} }
func (p *ProportionChange) args() []string { return []string{p.Value.String()} }
func (p *Custos) args() []string           { return []string{p.Pitch.String()} }
func (p *ModernText) args() []string       { return []string{strconv.Quote(p.Text)} }
func (p *SectionEnd) args() []string       { return nil }

func (p *ColorChange) args() []string {
	c := p.Coloration
	return []string{c.PrimaryColor.String(), c.PrimaryFill.String(), c.SecondaryColor.String(), c.SecondaryFill.String()}
}

func (p *LineEnd) args() []string {
	if p.PageEnd {
		return []string{"page"}
	}
	return nil
}

func (p *Barline) args() []string {
	var ret []string
	if p.NumLines > 1 {
		ret = append(ret, strconv.Itoa(p.NumLines))
	}
	if p.Repeat {
		ret = append(ret, "repeat")
	}
	return ret
}

func (p *Annotation) args() []string {
	return []string{strconv.Quote(p.Text), p.Pitch.String()}
}

func (p *Lacuna) args() []string {
	if p.End {
		return []string{"end"}
	}
	return nil
}

func (p *VariantMarker) args() []string {
	if p.End {
		return []string{"end"}
	}
	return []string{"start"}
}

func (p *Multi) args() []string {
	ret := make([]string, len(p.Events))
	for i, e := range p.Events {
		ret[i] = e.String()
	}
	return ret
}
