package render

import (
	"github.com/mensura/mensura"
)

// Layout keeps the latest rendering of every voice. It is meant to be handed
// to the editor as its renderer, and must only be used from the goroutine
// doing the edits.
type Layout struct {
	Options    Options
	renderings map[[2]int]*Rendering
	rerenders  int
}

func NewLayout(opt Options) *Layout {
	return &Layout{Options: opt, renderings: map[[2]int]*Rendering{}}
}

// Rerender implements editor.Renderer.
func (l *Layout) Rerender(section, voice int, view *mensura.Materialized) {
	if l.renderings == nil {
		l.renderings = map[[2]int]*Rendering{}
	}
	l.renderings[[2]int{section, voice}] = Render(view, l.Options)
	l.rerenders++
}

// Rendering returns the latest rendering of a voice, or nil if the voice has
// not been rendered yet.
func (l *Layout) Rendering(section, voice int) *Rendering {
	return l.renderings[[2]int{section, voice}]
}

// Rerenders counts the calls to Rerender.
func (l *Layout) Rerenders() int { return l.rerenders }
