package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/mensura/mensura"
	"github.com/mensura/mensura/config"
	"github.com/mensura/mensura/editor"
	"github.com/mensura/mensura/render"
	"github.com/mensura/mensura/version"
)

var CLI struct {
	Config string `short:"c" help:"YAML config file." type:"existingfile"`

	New         NewCmd         `cmd:"" help:"Create an empty piece."`
	Dump        DumpCmd        `cmd:"" help:"Print a piece as read by one version."`
	Insert      InsertCmd      `cmd:"" help:"Insert events written in event notation."`
	Delete      DeleteCmd      `cmd:"" help:"Delete an event or a range of events."`
	Promote     PromoteCmd     `cmd:"" help:"Make a version's reading the default content."`
	Consolidate ConsolidateCmd `cmd:"" help:"Merge equal readings everywhere."`
	Versions    VersionsCmd    `cmd:"" help:"List, add or remove versions."`
	Version     VersionCmd     `cmd:"" help:"Print version information."`
}

// Globals is bound to every command's Run method.
type Globals struct {
	Config *config.Config
	Logger *slog.Logger
}

// Position addresses a voice of a piece file.
type Position struct {
	File    string `arg:"" help:"Piece file (.yml or .json)." type:"existingfile"`
	Section int    `short:"s" default:"0" help:"Section index."`
	Voice   int    `short:"v" default:"0" help:"Voice index."`
	Variant string `short:"V" help:"Version to edit; overrides the config."`
}

type NewCmd struct {
	File     string   `arg:"" help:"File to create." type:"path"`
	Title    string   `short:"t" help:"Title of the piece."`
	Voices   []string `default:"Cantus,Tenor" help:"Voice names."`
	Versions []string `help:"Names of non-default versions."`
	Force    bool     `short:"f" help:"Overwrite an existing file."`
}

type DumpCmd struct {
	File    string `arg:"" help:"Piece file." type:"existingfile"`
	Variant string `short:"V" help:"Version to print; overrides the config."`
	Markers bool   `help:"Show variant markers."`
}

type InsertCmd struct {
	Position
	Index  int    `arg:"" help:"Index to insert before."`
	Events string `arg:"" help:"Events, e.g. 'note(SB,G4) rest(M)'."`
}

type DeleteCmd struct {
	Position
	Index int `arg:"" help:"Index of the event to delete."`
	End   int `default:"-1" help:"Delete up to this index, exclusive."`
}

type PromoteCmd struct {
	Position
	Index int `arg:"" help:"Index of an event in the variant location."`
}

type ConsolidateCmd struct {
	File string `arg:"" help:"Piece file." type:"existingfile"`
}

type VersionsCmd struct {
	File   string   `arg:"" help:"Piece file." type:"existingfile"`
	Add    []string `help:"Versions to add."`
	Remove []string `help:"Versions to remove."`
}

type VersionCmd struct{}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("mensura"),
		kong.Description("Edit mensural scores with variant versions."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	cfg := config.Default()
	if CLI.Config != "" {
		var err error
		cfg, err = config.Read(os.DirFS(filepath.Dir(CLI.Config)), filepath.Base(CLI.Config))
		ctx.FatalIfErrorf(err)
	}
	g := &Globals{Config: cfg, Logger: cfg.Logger(os.Stderr)}
	err := ctx.Run(g)
	ctx.FatalIfErrorf(err)
}

func readPiece(path string) (*mensura.Piece, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %w", path, err)
	}
	p, err := mensura.UnmarshalPiece(b)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return p, nil
}

func writePiece(path string, p *mensura.Piece) error {
	b, err := mensura.MarshalPiece(p, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("could not marshal piece: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("could not write %v: %w", path, err)
	}
	return nil
}

// open loads a piece into an engine with the requested version active.
func (g *Globals) open(path, variant string) (*editor.Engine, error) {
	p, err := readPiece(path)
	if err != nil {
		return nil, err
	}
	e := editor.New(p, editor.WithLogger(g.Logger), editor.WithRenderer(render.NewLayout(g.Config.Render)))
	if variant == "" {
		variant = g.Config.Version
	}
	if variant != "" {
		v, err := p.Version(variant)
		if err != nil {
			return nil, err
		}
		if err := e.SetCurrentVariantVersion(v); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func report(r editor.Result) {
	fmt.Printf("%v at %d (delta %+d)\n", r.Outcome, r.Index, r.Delta)
}

func (c *NewCmd) Run(g *Globals) error {
	if _, err := os.Stat(c.File); err == nil && !c.Force {
		return fmt.Errorf("%v already exists", c.File)
	}
	p := mensura.NewPiece(c.Title, c.Voices...)
	for _, v := range c.Versions {
		p.AddVersion(v)
	}
	g.Logger.Debug("piece created", "file", c.File, "voices", len(c.Voices))
	return writePiece(c.File, p)
}

func (c *DumpCmd) Run(g *Globals) error {
	e, err := g.open(c.File, c.Variant)
	if err != nil {
		return err
	}
	opt := g.Config.Render
	opt.ShowVariantMarkers = opt.ShowVariantMarkers || c.Markers
	d, err := render.NewDumper(opt)
	if err != nil {
		return err
	}
	return d.Dump(os.Stdout, e.Piece(), e.Current())
}

func (c *InsertCmd) Run(g *Globals) error {
	events, err := mensura.ParseEvents(c.Events)
	if err != nil {
		return err
	}
	e, err := g.open(c.File, c.Variant)
	if err != nil {
		return err
	}
	r, err := e.Paste(c.Section, c.Voice, c.Index, events)
	if err != nil {
		return err
	}
	report(r)
	return writePiece(c.File, e.Piece())
}

func (c *DeleteCmd) Run(g *Globals) error {
	e, err := g.open(c.File, c.Variant)
	if err != nil {
		return err
	}
	var r editor.Result
	if c.End > c.Index+1 {
		r, err = e.DeleteRange(c.Section, c.Voice, c.Index, c.End)
	} else {
		r, err = e.Delete(c.Section, c.Voice, c.Index)
	}
	if err != nil {
		return err
	}
	report(r)
	return writePiece(c.File, e.Piece())
}

func (c *PromoteCmd) Run(g *Globals) error {
	e, err := g.open(c.File, c.Variant)
	if err != nil {
		return err
	}
	loc, ok := e.LocationAt(c.Section, c.Voice, c.Index)
	if !ok {
		return errors.New("no variant location at that index")
	}
	l := e.Piece().Voice(c.Section, c.Voice).Location(loc)
	_, i := l.ReadingFor(e.Current())
	r, err := e.SetReadingAsDefault(c.Section, c.Voice, loc, i)
	if err != nil {
		return err
	}
	report(r)
	return writePiece(c.File, e.Piece())
}

func (c *ConsolidateCmd) Run(g *Globals) error {
	e, err := g.open(c.File, "")
	if err != nil {
		return err
	}
	merged := 0
	for si, s := range e.Piece().Sections {
		for vi, v := range s.Voices {
			if v == nil {
				continue
			}
			for _, l := range v.Locations() {
				r, err := e.ConsolidateReadings(si, vi, l.ID)
				if err != nil {
					return err
				}
				if r.Outcome == editor.Combined {
					merged++
				}
			}
		}
	}
	fmt.Printf("%d locations consolidated\n", merged)
	return writePiece(c.File, e.Piece())
}

func (c *VersionsCmd) Run(g *Globals) error {
	e, err := g.open(c.File, "")
	if err != nil {
		return err
	}
	for _, name := range c.Add {
		e.AddVersion(name)
	}
	for _, name := range c.Remove {
		v, err := e.Piece().Version(name)
		if err != nil {
			return err
		}
		if err := e.RemoveVersion(v); err != nil {
			return err
		}
	}
	for _, v := range e.Piece().Versions {
		mark := " "
		if v.Default {
			mark = "*"
		}
		fmt.Printf("%s %s\t%v\n", mark, v.Name, v.ID)
	}
	if len(c.Add) == 0 && len(c.Remove) == 0 {
		return nil
	}
	return writePiece(c.File, e.Piece())
}

func (c *VersionCmd) Run() error {
	fmt.Println(version.VersionOrHash)
	return nil
}
