package mensura

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type (
	// PieceData is the serialized form of a Piece. Event handles and location
	// IDs are not part of it: variant markers carry their readings inline and
	// locations are renumbered when the piece is imported.
	PieceData struct {
		Title    string `yaml:",omitempty" json:",omitempty"`
		Composer string `yaml:",omitempty" json:",omitempty"`
		Voices   []VoiceInfo
		Versions []Version
		Sections []SectionData
	}

	SectionData struct {
		Coloration Coloration
		// Voices has one entry per roster voice; nil means silent.
		Voices []*VoiceData
	}

	VoiceData struct {
		Events []EventData
	}

	// EventData holds exactly one non-nil payload field.
	EventData struct {
		Attributes  `yaml:",inline"`
		Clef        *Clef             `yaml:",omitempty" json:",omitempty"`
		Mensuration *Mensuration      `yaml:",omitempty" json:",omitempty"`
		Note        *Note             `yaml:",omitempty" json:",omitempty"`
		Rest        *Rest             `yaml:",omitempty" json:",omitempty"`
		Dot         *Dot              `yaml:",omitempty" json:",omitempty"`
		Original    *OriginalText     `yaml:",omitempty" json:",omitempty"`
		Proportion  *ProportionChange `yaml:",omitempty" json:",omitempty"`
		Color       *ColorChange      `yaml:",omitempty" json:",omitempty"`
		Custos      *Custos           `yaml:",omitempty" json:",omitempty"`
		LineEnd     *LineEnd          `yaml:",omitempty" json:",omitempty"`
		Barline     *Barline          `yaml:",omitempty" json:",omitempty"`
		Annotation  *Annotation       `yaml:",omitempty" json:",omitempty"`
		Lacuna      *Lacuna           `yaml:",omitempty" json:",omitempty"`
		Text        *ModernText       `yaml:",omitempty" json:",omitempty"`
		Variant     *VariantData      `yaml:",omitempty" json:",omitempty"`
		Multi       *MultiData        `yaml:",omitempty" json:",omitempty"`
		End         *SectionEnd       `yaml:",omitempty" json:",omitempty"`
	}

	// VariantData is a variant marker. The readings of a location are stored
	// on its start marker.
	VariantData struct {
		End      bool          `yaml:",omitempty" json:",omitempty"`
		Readings []ReadingData `yaml:",omitempty" json:",omitempty"`
	}

	ReadingData struct {
		Versions []uuid.UUID `yaml:",flow"`
		Error    bool        `yaml:",omitempty" json:",omitempty"`
		Events   []EventData
	}

	MultiData struct {
		Events []EventData
	}
)

// Export converts the piece into its serialized form.
func Export(p *Piece) PieceData {
	d := PieceData{Title: p.Title, Composer: p.Composer}
	d.Voices = append(d.Voices, p.Voices...)
	for _, v := range p.Versions {
		d.Versions = append(d.Versions, *v)
	}
	for _, s := range p.Sections {
		sd := SectionData{Coloration: s.Coloration, Voices: make([]*VoiceData, len(s.Voices))}
		for i, v := range s.Voices {
			if v == nil {
				continue
			}
			vd := &VoiceData{}
			for _, id := range v.Events.ids {
				vd.Events = append(vd.Events, exportEvent(v, v.Event(id)))
			}
			sd.Voices[i] = vd
		}
		d.Sections = append(d.Sections, sd)
	}
	return d
}

func exportEvent(v *Voice, e *Event) EventData {
	d := EventData{Attributes: e.Attributes.copy()}
	switch p := e.payload.(type) {
	case *Clef:
		d.Clef = ptr(*p)
	case *Mensuration:
		d.Mensuration = ptr(*p)
	case *Note:
		d.Note = ptr(*p)
	case *Rest:
		d.Rest = ptr(*p)
	case *Dot:
		d.Dot = ptr(*p)
	case *OriginalText:
		d.Original = ptr(*p)
	case *ProportionChange:
		d.Proportion = ptr(*p)
	case *ColorChange:
		d.Color = ptr(*p)
	case *Custos:
		d.Custos = ptr(*p)
	case *LineEnd:
		d.LineEnd = ptr(*p)
	case *Barline:
		d.Barline = ptr(*p)
	case *Annotation:
		d.Annotation = ptr(*p)
	case *Lacuna:
		d.Lacuna = ptr(*p)
	case *ModernText:
		d.Text = ptr(*p)
	case *VariantMarker:
		d.Variant = &VariantData{End: p.End}
		if l := v.Location(p.Location); !p.End && l != nil {
			for _, r := range l.Readings {
				rd := ReadingData{Error: r.Error}
				for _, ver := range r.versions {
					rd.Versions = append(rd.Versions, ver.ID)
				}
				for _, id := range r.Events.ids {
					rd.Events = append(rd.Events, exportEvent(v, v.Event(id)))
				}
				d.Variant.Readings = append(d.Variant.Readings, rd)
			}
		}
	case *Multi:
		d.Multi = &MultiData{}
		for _, c := range p.Events {
			d.Multi.Events = append(d.Multi.Events, exportEvent(v, c))
		}
	case *SectionEnd:
		d.End = &SectionEnd{}
	}
	return d
}

// Import builds a piece from its serialized form and validates it.
func Import(d PieceData) (*Piece, error) {
	p := &Piece{Title: d.Title, Composer: d.Composer}
	p.Voices = append(p.Voices, d.Voices...)
	seen := map[uuid.UUID]bool{}
	for _, v := range d.Versions {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("duplicate version id %v", v.ID)
		}
		seen[v.ID] = true
		p.Versions = append(p.Versions, ptr(v))
	}
	for si, sd := range d.Sections {
		s := &Section{Coloration: sd.Coloration, Voices: make([]*Voice, len(sd.Voices))}
		for vi, vd := range sd.Voices {
			if vd == nil {
				continue
			}
			v, err := p.importVoice(vd)
			if err != nil {
				return nil, fmt.Errorf("section %d voice %d: %w", si, vi, err)
			}
			s.Voices[vi] = v
		}
		p.Sections = append(p.Sections, s)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Piece) importVoice(vd *VoiceData) (*Voice, error) {
	v := &Voice{Events: NewEventList(), locations: map[LocationID]*Location{}}
	var open *Location
	for i, ed := range vd.Events {
		if vr := ed.Variant; vr != nil {
			if err := ed.Attributes.empty(); err != nil {
				return nil, fmt.Errorf("event %d: variant marker: %w", i, err)
			}
			if vr.End {
				if open == nil {
					return nil, fmt.Errorf("event %d: variant end without start", i)
				}
				v.Events.Append(open.End)
				open = nil
				continue
			}
			if open != nil {
				return nil, fmt.Errorf("event %d: nested variant location", i)
			}
			v.nextLocation++
			open = &Location{ID: v.nextLocation}
			open.Start = v.Add(NewEvent(&VariantMarker{Location: open.ID}))
			open.End = v.Add(NewEvent(&VariantMarker{Location: open.ID, End: true}))
			for _, rd := range vr.Readings {
				r := &Reading{Events: NewEventList(), Error: rd.Error}
				for _, id := range rd.Versions {
					ver, err := p.VersionByID(id)
					if err != nil {
						return nil, fmt.Errorf("event %d: %w", i, err)
					}
					r.AddVersion(ver)
				}
				for k, red := range rd.Events {
					e, err := importEvent(red)
					if err != nil {
						return nil, fmt.Errorf("event %d: reading event %d: %w", i, k, err)
					}
					if e.Kind() == SectionEndKind {
						return nil, fmt.Errorf("event %d: section end inside a reading", i)
					}
					r.Events.Append(v.Add(e))
				}
				open.Readings = append(open.Readings, r)
			}
			v.locations[open.ID] = open
			v.Events.Append(open.Start)
			continue
		}
		e, err := importEvent(ed)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if e.Kind() == SectionEndKind && (open != nil || i != len(vd.Events)-1) {
			return nil, fmt.Errorf("event %d: misplaced section end", i)
		}
		v.Events.Append(v.Add(e))
	}
	if open != nil {
		return nil, fmt.Errorf("unterminated variant location")
	}
	if n := v.Events.Len(); n == 0 || v.At(n-1).Kind() != SectionEndKind {
		v.Events.Append(v.Add(NewEvent(&SectionEnd{})))
	}
	return v, nil
}

func importEvent(d EventData) (*Event, error) {
	var payloads []Payload
	add := func(ok bool, p Payload) {
		if ok {
			payloads = append(payloads, p)
		}
	}
	add(d.Clef != nil, d.Clef)
	add(d.Mensuration != nil, d.Mensuration)
	add(d.Note != nil, d.Note)
	add(d.Rest != nil, d.Rest)
	add(d.Dot != nil, d.Dot)
	add(d.Original != nil, d.Original)
	add(d.Proportion != nil, d.Proportion)
	add(d.Color != nil, d.Color)
	add(d.Custos != nil, d.Custos)
	add(d.LineEnd != nil, d.LineEnd)
	add(d.Barline != nil, d.Barline)
	add(d.Annotation != nil, d.Annotation)
	add(d.Lacuna != nil, d.Lacuna)
	add(d.Text != nil, d.Text)
	add(d.End != nil, d.End)
	if d.Multi != nil {
		m := &Multi{}
		for i, cd := range d.Multi.Events {
			c, err := importEvent(cd)
			if err != nil {
				return nil, fmt.Errorf("multi event %d: %w", i, err)
			}
			switch c.Kind() {
			case VariantMarkerKind, SectionEndKind, MultiKind:
				return nil, fmt.Errorf("multi event %d: %v cannot be simultaneous", i, c.Kind())
			}
			m.Events = append(m.Events, c)
		}
		payloads = append(payloads, m)
	}
	if d.Variant != nil {
		return nil, fmt.Errorf("variant marker outside the main sequence")
	}
	if len(payloads) != 1 {
		return nil, fmt.Errorf("event has %d payloads, want 1", len(payloads))
	}
	e := NewEvent(payloads[0].clone())
	e.Attributes = d.Attributes.copy()
	return e, nil
}

func (a Attributes) empty() error {
	if a.equal(Attributes{}) {
		return nil
	}
	return fmt.Errorf("unexpected attributes")
}

// MarshalPiece encodes the piece as JSON when extension is ".json" and as
// YAML otherwise.
func MarshalPiece(p *Piece, extension string) ([]byte, error) {
	d := Export(p)
	if extension == ".json" {
		return json.MarshalIndent(d, "", "  ")
	}
	return yaml.Marshal(d)
}

// UnmarshalPiece decodes a piece from JSON or YAML.
func UnmarshalPiece(b []byte) (*Piece, error) {
	var d PieceData
	if errJSON := json.Unmarshal(b, &d); errJSON != nil {
		d = PieceData{}
		if errYaml := yaml.Unmarshal(b, &d); errYaml != nil {
			return nil, fmt.Errorf("could not unmarshal piece: %v / %v", errYaml, errJSON)
		}
	}
	return Import(d)
}
