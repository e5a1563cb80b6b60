package mensura

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type (
	// Piece is a whole document: the voice roster, the versions and the
	// sections in order.
	Piece struct {
		Title    string
		Composer string
		Voices   []VoiceInfo
		Versions []*Version
		Sections []*Section
	}

	// VoiceInfo describes one voice of the roster.
	VoiceInfo struct {
		Name  string
		Clef  string `yaml:",omitempty" json:",omitempty"`
		Range string `yaml:",omitempty" json:",omitempty"`
	}

	// Section holds one timeline per roster voice; a nil entry means the
	// voice is silent in the section.
	Section struct {
		Coloration Coloration
		Voices     []*Voice
	}
)

const DefaultVersionName = "Default"

// NewPiece returns a piece with the given voices, a default version and one
// empty section.
func NewPiece(title string, voiceNames ...string) *Piece {
	p := &Piece{Title: title}
	for _, n := range voiceNames {
		p.Voices = append(p.Voices, VoiceInfo{Name: n})
	}
	p.Versions = []*Version{NewVersion(DefaultVersionName, true)}
	p.AddSection(DefaultColoration)
	return p
}

// AddSection appends a section with an empty timeline for every voice.
func (p *Piece) AddSection(c Coloration) *Section {
	s := &Section{Coloration: c, Voices: make([]*Voice, len(p.Voices))}
	for i := range s.Voices {
		s.Voices[i] = NewVoice()
	}
	p.Sections = append(p.Sections, s)
	return s
}

// Voice returns the timeline of voice in section, or nil if it does not
// exist.
func (p *Piece) Voice(section, voice int) *Voice {
	if section < 0 || section >= len(p.Sections) {
		return nil
	}
	s := p.Sections[section]
	if voice < 0 || voice >= len(s.Voices) {
		return nil
	}
	return s.Voices[voice]
}

func (p *Piece) DefaultVersion() *Version {
	for _, v := range p.Versions {
		if v.Default {
			return v
		}
	}
	return nil
}

// AddVersion appends a non-default version.
func (p *Piece) AddVersion(name string) *Version {
	v := NewVersion(name, false)
	p.Versions = append(p.Versions, v)
	return v
}

// Version finds a version by name.
func (p *Piece) Version(name string) (*Version, error) {
	for _, v := range p.Versions {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, name)
}

func (p *Piece) VersionByID(id uuid.UUID) (*Version, error) {
	for _, v := range p.Versions {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownVersion, id)
}

// RemoveVersionEntry drops v from the version list. Readings still referring
// to v are not touched; the editor strips them first.
func (p *Piece) RemoveVersionEntry(v *Version) bool {
	i := slices.Index(p.Versions, v)
	if i < 0 || v.Default {
		return false
	}
	p.Versions = slices.Delete(p.Versions, i, i+1)
	return true
}

// Validate checks the structural invariants of the piece: exactly one
// default version, every timeline ends with a section end, and no two
// readings of a location share a version.
func (p *Piece) Validate() error {
	defaults := 0
	for _, v := range p.Versions {
		if v.Default {
			defaults++
		}
	}
	if defaults != 1 {
		return fmt.Errorf("piece has %d default versions", defaults)
	}
	for si, s := range p.Sections {
		if len(s.Voices) != len(p.Voices) {
			return fmt.Errorf("section %d has %d voices, roster has %d", si, len(s.Voices), len(p.Voices))
		}
		for vi, v := range s.Voices {
			if v == nil {
				continue
			}
			if n := v.Events.Len(); n == 0 || v.At(n-1).Kind() != SectionEndKind {
				return fmt.Errorf("section %d voice %d does not end with a section end", si, vi)
			}
			for _, l := range v.Locations() {
				seen := map[*Version]bool{}
				for _, r := range l.Readings {
					if len(r.versions) == 0 {
						return fmt.Errorf("section %d voice %d location %d has a reading without versions", si, vi, l.ID)
					}
					for _, ver := range r.versions {
						if seen[ver] || ver.Default {
							return fmt.Errorf("section %d voice %d location %d: version %q read twice", si, vi, l.ID, ver.Name)
						}
						seen[ver] = true
					}
				}
			}
		}
	}
	return nil
}

// Copy makes a deep copy of the piece, including new Version values.
func (p *Piece) Copy() *Piece {
	ret := &Piece{Title: p.Title, Composer: p.Composer, Voices: slices.Clone(p.Voices)}
	versions := make(map[*Version]*Version, len(p.Versions))
	for _, v := range p.Versions {
		c := *v
		versions[v] = &c
		ret.Versions = append(ret.Versions, &c)
	}
	for _, s := range p.Sections {
		ns := &Section{Coloration: s.Coloration, Voices: make([]*Voice, len(s.Voices))}
		for i, v := range s.Voices {
			if v != nil {
				ns.Voices[i] = v.Copy(versions)
			}
		}
		ret.Sections = append(ret.Sections, ns)
	}
	return ret
}
