package mensura

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// notationTerm is one term of the event notation: a quoted string, or a word
// with an optional parenthesized argument list. Events are written as terms,
// e.g. note(SB,G4,lig) or multi(clef(C,C3),clef(flat,B3,sig)).
type notationTerm struct {
	Text *string         `(  @String`
	Word string          ` | @Word`
	Args []*notationTerm `   ( "(" ( @@ ( "," @@ )* )? ")" )? )`
}

// notationList is a whitespace separated sequence of terms.
type notationList struct {
	Terms []*notationTerm `@@*`
}

var notationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[-A-Za-z0-9_/?#+]+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	notationOptions = []participle.Option{
		participle.Lexer(notationLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	}
	notationParser     = participle.MustBuild[notationTerm](notationOptions...)
	notationListParser = participle.MustBuild[notationList](notationOptions...)
)

// ParseEvent parses the textual form produced by Event.String. Variant
// markers have no textual form.
func ParseEvent(s string) (*Event, error) {
	t, err := notationParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadNotation, err)
	}
	return t.event()
}

// ParseEvents parses a whitespace separated list of events.
func ParseEvents(s string) ([]*Event, error) {
	l, err := notationListParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadNotation, err)
	}
	ret := make([]*Event, 0, len(l.Terms))
	for _, t := range l.Terms {
		e, err := t.event()
		if err != nil {
			return nil, err
		}
		ret = append(ret, e)
	}
	return ret, nil
}

// argReader consumes the arguments of a term: required positional arguments
// first, then optional flags in any order.
type argReader struct {
	kind  string
	args  []*notationTerm
	attrs Attributes
}

func (r *argReader) errorf(format string, a ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrBadNotation, r.kind, fmt.Sprintf(format, a...))
}

func (r *argReader) word() (string, error) {
	if len(r.args) == 0 {
		return "", r.errorf("missing argument")
	}
	a := r.args[0]
	if a.Text != nil || a.Args != nil {
		return "", r.errorf("expected a word")
	}
	r.args = r.args[1:]
	return a.Word, nil
}

func (r *argReader) text() (string, error) {
	if len(r.args) == 0 || r.args[0].Text == nil {
		return "", r.errorf("expected a quoted string")
	}
	s := *r.args[0].Text
	r.args = r.args[1:]
	return s, nil
}

func (r *argReader) pitch() (Pitch, error) {
	w, err := r.word()
	if err != nil {
		return Pitch{}, err
	}
	return ParsePitch(w)
}

// flags calls fn for every remaining word. Attribute flags are handled here;
// fn reports whether it recognized the word.
func (r *argReader) flags(fn func(string) bool) error {
	for _, a := range r.args {
		if a.Text != nil || a.Args != nil {
			return r.errorf("unexpected argument")
		}
		if !r.attribute(a.Word) && (fn == nil || !fn(a.Word)) {
			return r.errorf("unknown flag %q", a.Word)
		}
	}
	r.args = nil
	return nil
}

func (r *argReader) attribute(w string) bool {
	switch w {
	case "ed":
		r.attrs.Editorial = true
	case "err":
		r.attrs.Error = true
	case "corona", "corona_below":
		r.attrs.Corona = &Mark{Below: w == "corona_below"}
	case "signum", "signum_below":
		r.attrs.Signum = &Mark{Below: w == "signum_below"}
	default:
		return false
	}
	return true
}

func lookup(names []string, s string) (int, bool) {
	for i, n := range names {
		if n != "" && strings.EqualFold(n, s) {
			return i, true
		}
	}
	return 0, false
}

func (t *notationTerm) event() (*Event, error) {
	if t.Text != nil {
		return nil, fmt.Errorf("%w: expected an event, got a string", ErrBadNotation)
	}
	kind, ok := lookup(kindNames[:], t.Word)
	if !ok {
		return nil, fmt.Errorf("%w: unknown event kind %q", ErrBadNotation, t.Word)
	}
	r := &argReader{kind: t.Word, args: t.Args}
	p, err := r.payload(Kind(kind))
	if err != nil {
		return nil, err
	}
	e := NewEvent(p)
	e.Attributes = r.attrs
	return e, nil
}

func (r *argReader) payload(k Kind) (Payload, error) {
	switch k {
	case ClefKind:
		w, err := r.word()
		if err != nil {
			return nil, err
		}
		t, ok := lookup(clefNames[:], w)
		if !ok {
			return nil, r.errorf("unknown clef %q", w)
		}
		c := &Clef{Type: ClefType(t)}
		if c.Pitch, err = r.pitch(); err != nil {
			return nil, err
		}
		return c, r.flags(func(f string) bool {
			c.Signature = f == "sig"
			return c.Signature
		})
	case MensurationKind:
		w, err := r.word()
		if err != nil {
			return nil, err
		}
		s, ok := lookup(signNames[:], w)
		if !ok {
			return nil, r.errorf("unknown mensuration sign %q", w)
		}
		m := &Mensuration{Sign: MensuralSign(s)}
		return m, r.flags(func(f string) bool {
			switch f {
			case "dot":
				m.Dotted = true
			case "stroke":
				m.Stroke = true
			case "rev":
				m.Reversed = true
			default:
				n, err := strconv.Atoi(f)
				m.Number = n
				return err == nil
			}
			return true
		})
	case NoteKind:
		nt, err := r.noteType()
		if err != nil {
			return nil, err
		}
		n := &Note{Type: nt, Length: nt.DefaultLength()}
		if n.Pitch, err = r.pitch(); err != nil {
			return nil, err
		}
		return n, r.flags(func(f string) bool {
			if l, ok := lookup(ligatureNames[:], f); ok {
				n.Ligature = Ligature(l)
			} else if a, ok := lookup(accidentalNames[:], f); ok {
				n.Accidental = Accidental(a)
			} else if f == "col" {
				n.Colored = true
			} else if f == "down" {
				n.StemDown = true
			} else if l, err := ParseProportion(f); err == nil && strings.Contains(f, "/") {
				n.Length = l
			} else {
				return false
			}
			return true
		})
	case RestKind:
		nt, err := r.noteType()
		if err != nil {
			return nil, err
		}
		rest := &Rest{Type: nt, Length: nt.DefaultLength()}
		return rest, r.flags(func(f string) bool {
			if s, ok := strings.CutPrefix(f, "lines"); ok {
				n, err := strconv.Atoi(s)
				rest.NumLines = n
				return err == nil
			}
			if s, ok := strings.CutPrefix(f, "line"); ok {
				n, err := strconv.Atoi(s)
				rest.Line = n
				return err == nil
			}
			l, err := ParseProportion(f)
			rest.Length = l
			return err == nil && strings.Contains(f, "/")
		})
	case DotKind:
		p, err := r.pitch()
		return &Dot{Pitch: p}, firstErr(err, r.flags(nil))
	case CustosKind:
		p, err := r.pitch()
		return &Custos{Pitch: p}, firstErr(err, r.flags(nil))
	case OriginalTextKind:
		s, err := r.text()
		return &OriginalText{Text: s}, firstErr(err, r.flags(nil))
	case ModernTextKind:
		s, err := r.text()
		return &ModernText{Text: s}, firstErr(err, r.flags(nil))
	case AnnotationKind:
		s, err := r.text()
		if err != nil {
			return nil, err
		}
		p, err := r.pitch()
		return &Annotation{Text: s, Pitch: p}, firstErr(err, r.flags(nil))
	case ProportionKind:
		w, err := r.word()
		if err != nil {
			return nil, err
		}
		v, err := ParseProportion(w)
		return &ProportionChange{Value: v}, firstErr(err, r.flags(nil))
	case ColorChangeKind:
		var c Coloration
		for _, u := range []encoding.TextUnmarshaler{
			&c.PrimaryColor, &c.PrimaryFill, &c.SecondaryColor, &c.SecondaryFill,
		} {
			w, err := r.word()
			if err != nil {
				return nil, err
			}
			if err := u.UnmarshalText([]byte(w)); err != nil {
				return nil, r.errorf("%v", err)
			}
		}
		return &ColorChange{Coloration: c}, r.flags(nil)
	case LineEndKind:
		l := &LineEnd{}
		return l, r.flags(func(f string) bool {
			l.PageEnd = f == "page"
			return l.PageEnd
		})
	case BarlineKind:
		b := &Barline{}
		return b, r.flags(func(f string) bool {
			if f == "repeat" {
				b.Repeat = true
				return true
			}
			n, err := strconv.Atoi(f)
			b.NumLines = n
			return err == nil
		})
	case LacunaKind:
		l := &Lacuna{}
		return l, r.flags(func(f string) bool {
			l.End = f == "end"
			return l.End
		})
	case MultiKind:
		m := &Multi{}
		for _, a := range r.args {
			if a.Text == nil && a.Args == nil && r.attribute(a.Word) {
				continue
			}
			e, err := a.event()
			if err != nil {
				return nil, err
			}
			switch e.Kind() {
			case VariantMarkerKind, SectionEndKind, MultiKind:
				return nil, r.errorf("%v cannot be simultaneous", e.Kind())
			}
			m.Events = append(m.Events, e)
		}
		return m, nil
	case SectionEndKind:
		return &SectionEnd{}, r.flags(nil)
	}
	return nil, r.errorf("cannot be written")
}

func (r *argReader) noteType() (NoteType, error) {
	w, err := r.word()
	if err != nil {
		return 0, err
	}
	return ParseNoteType(w)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
