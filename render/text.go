package render

import (
	"embed"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/mensura/mensura"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.txt
var templates embed.FS

// Dumper writes text dumps of pieces.
type Dumper struct {
	Template *template.Template
	Options  Options
}

type (
	pieceText struct {
		Title, Composer string
		Version         string
		Sections        []sectionText
	}

	sectionText struct {
		Coloration string
		Voices     []voiceText
	}

	voiceText struct {
		Name   string
		Events []string
	}
)

// NewDumper returns a dumper using the built-in templates.
func NewDumper(opt Options) (*Dumper, error) {
	caser := cases.Title(language.Und)
	tmpl, err := template.New("base").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"titleCase": caser.String}).
		ParseFS(templates, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf(`could not parse the dump templates: %v`, err)
	}
	return &Dumper{Template: tmpl, Options: opt}, nil
}

// Dump writes the piece as read by ver.
func (d *Dumper) Dump(w io.Writer, p *mensura.Piece, ver *mensura.Version) error {
	data := pieceText{Title: p.Title, Composer: p.Composer, Version: ver.Name}
	for _, s := range p.Sections {
		c := s.Coloration
		st := sectionText{Coloration: fmt.Sprintf("%v %v, %v %v", c.PrimaryColor, c.PrimaryFill, c.SecondaryColor, c.SecondaryFill)}
		for vi, v := range s.Voices {
			if v == nil {
				continue
			}
			vt := voiceText{Name: p.Voices[vi].Name}
			for _, re := range Render(v.Materialize(ver), d.Options).Events {
				vt.Events = append(vt.Events, eventText(re))
			}
			st.Voices = append(st.Voices, vt)
		}
		data.Sections = append(data.Sections, st)
	}
	if err := d.Template.ExecuteTemplate(w, "piece", data); err != nil {
		return fmt.Errorf(`could not execute template "piece": %v`, err)
	}
	return nil
}

func eventText(re RenderedEvent) string {
	if m := re.Event.VariantMarker(); m != nil {
		if m.End {
			return "]"
		}
		return "["
	}
	if re.Restated {
		return "(" + re.Event.String() + ")"
	}
	return re.Event.String()
}
