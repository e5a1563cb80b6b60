package editor

import (
	"fmt"
	"log/slog"

	"github.com/mensura/mensura"
	"golang.org/x/exp/slices"
)

type (
	// Engine applies edits to a piece as seen by one active version.
	Engine struct {
		piece    *mensura.Piece
		current  *mensura.Version
		views    map[voiceKey]*mensura.Materialized
		renderer Renderer
		logger   *slog.Logger
	}

	// Renderer is told about the new sequence of a voice after every change.
	// The view must not be modified.
	Renderer interface {
		Rerender(section, voice int, view *mensura.Materialized)
	}

	Option func(*Engine)

	voiceKey struct{ section, voice int }

	// op is the bookkeeping of one edit. Events removed during the edit are
	// freed only when it is committed, so handles are not recycled while
	// the successor map still refers to them.
	op struct {
		e       *Engine
		key     voiceKey
		voice   *mensura.Voice
		before  []mensura.EventID
		succ    map[mensura.EventID]mensura.EventID
		garbage []mensura.EventID
	}
)

func WithRenderer(r Renderer) Option { return func(e *Engine) { e.renderer = r } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// New returns an engine editing piece with the default version active.
func New(piece *mensura.Piece, opts ...Option) *Engine {
	e := &Engine{
		piece:   piece,
		current: piece.DefaultVersion(),
		views:   map[voiceKey]*mensura.Materialized{},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Piece() *mensura.Piece { return e.piece }

// Current returns the active version.
func (e *Engine) Current() *mensura.Version { return e.current }

// SetCurrentVariantVersion makes ver the active version and rebuilds the view
// of every voice. A nil version selects the default.
func (e *Engine) SetCurrentVariantVersion(ver *mensura.Version) error {
	if ver == nil {
		ver = e.piece.DefaultVersion()
	}
	if !slices.Contains(e.piece.Versions, ver) {
		return fmt.Errorf("%w: %q", mensura.ErrUnknownVersion, ver.Name)
	}
	e.current = ver
	e.refreshAll()
	e.logger.Debug("active version changed", "version", ver.Name)
	return nil
}

// View returns the sequence of a voice as the active version reads it.
func (e *Engine) View(section, voice int) *mensura.Materialized {
	k := voiceKey{section, voice}
	if m, ok := e.views[k]; ok && m.Voice() == e.voice(section, voice) {
		return m
	}
	m := e.voice(section, voice).Materialize(e.current)
	e.views[k] = m
	return m
}

// Materialize returns the sequence of a voice as ver reads it, without
// changing the active version.
func (e *Engine) Materialize(section, voice int, ver *mensura.Version) *mensura.Materialized {
	return e.voice(section, voice).Materialize(ver)
}

// LocationAt returns the variant location containing the event at index of
// the active view, if any.
func (e *Engine) LocationAt(section, voice, index int) (mensura.LocationID, bool) {
	s := e.View(section, voice).At(index)
	if s.Location == nil {
		return 0, false
	}
	return s.Location.ID, true
}

func (e *Engine) voice(section, voice int) *mensura.Voice {
	v := e.piece.Voice(section, voice)
	if v == nil {
		panic(fmt.Errorf("%w: section %d voice %d", mensura.ErrInvalidIndex, section, voice))
	}
	return v
}

func (e *Engine) refresh(k voiceKey) *mensura.Materialized {
	m := e.voice(k.section, k.voice).Materialize(e.current)
	e.views[k] = m
	if e.renderer != nil {
		e.renderer.Rerender(k.section, k.voice, m)
	}
	return m
}

func (e *Engine) refreshAll() {
	clear(e.views)
	for si, s := range e.piece.Sections {
		for vi, v := range s.Voices {
			if v != nil {
				e.refresh(voiceKey{si, vi})
			}
		}
	}
}

func (e *Engine) begin(section, voice int) *op {
	return &op{
		e:      e,
		key:    voiceKey{section, voice},
		voice:  e.voice(section, voice),
		before: e.View(section, voice).IDs(),
		succ:   map[mensura.EventID]mensura.EventID{},
	}
}

// resolve follows the successor chain of id.
func (o *op) resolve(id mensura.EventID) mensura.EventID {
	for i, n := 0, len(o.succ)+1; i < n; i++ {
		n, ok := o.succ[id]
		if !ok {
			break
		}
		id = n
	}
	return id
}

// link records to as the successor of from. A copy dropped in favour of its
// original hands the original back its place.
func (o *op) link(from, to mensura.EventID) {
	if o.succ[to] == from {
		delete(o.succ, to)
	}
	o.succ[from] = to
}

func (o *op) discard(ids ...mensura.EventID) {
	o.garbage = append(o.garbage, ids...)
}

// commit frees the garbage, rebuilds the view and computes the index
// remapping. affected is the event whose new index is reported; requested
// is the index the edit was addressed to.
func (o *op) commit(outcome Outcome, requested int, affected mensura.EventID) Result {
	for _, id := range o.garbage {
		o.voice.Free(id)
	}
	m := o.e.refresh(o.key)
	r := Result{Outcome: outcome, Second: -1, remap: make([]int, len(o.before))}
	for i, id := range o.before {
		r.remap[i] = m.ListPlace(o.resolve(id))
	}
	r.Index = -1
	if affected != mensura.NoEvent {
		r.Index = m.ListPlace(o.resolve(affected))
	}
	if r.Index >= 0 {
		r.Delta = r.Index - requested
	}
	o.e.logger.Debug("edit", "section", o.key.section, "voice", o.key.voice,
		"version", o.e.current.Name, "outcome", outcome, "index", requested, "delta", r.Delta)
	return r
}

func (e *Engine) refuse(err error, what string, section, voice, index int) error {
	e.logger.Warn("edit refused", "op", what, "section", section, "voice", voice,
		"index", index, "version", e.current.Name, "err", err)
	return err
}

// copyIDs duplicates the events of ids into new arena slots. When record is
// set, the copies become the successors of the originals.
func (o *op) copyIDs(ids []mensura.EventID, record bool) []mensura.EventID {
	ret := make([]mensura.EventID, len(ids))
	for i, id := range ids {
		ret[i] = o.voice.Add(o.voice.Event(id).Copy())
		if record {
			o.link(id, ret[i])
		}
	}
	return ret
}

// tidy restores the reading invariants of a location after an edit: equal
// readings are merged, readings equal to the default content are dropped and
// a location without readings is removed. It reports whether readings were
// merged and whether the location was removed.
func (o *op) tidy(l *mensura.Location) (merged, removed bool) {
	merged = o.consolidate(l)
	def := o.voice.DefaultContent(l)
	for i := 0; i < len(l.Readings); i++ {
		r := l.Readings[i]
		if len(r.Versions()) > 0 && (r.Error || !o.voice.EqualContent(r.Events.IDs(), def)) {
			continue
		}
		for k, id := range r.Events.IDs() {
			if k < len(def) {
				o.link(id, def[k])
			}
			o.discard(id)
		}
		l.RemoveReading(i)
		i--
	}
	if len(l.Readings) == 0 {
		start, end := o.voice.RemoveLocation(l)
		o.discard(start, end)
		removed = true
	}
	return merged, removed
}

// consolidate merges readings of l with equal content.
func (o *op) consolidate(l *mensura.Location) bool {
	merged := false
	for i := 0; i < len(l.Readings); i++ {
		a := l.Readings[i]
		for j := i + 1; j < len(l.Readings); j++ {
			b := l.Readings[j]
			if a.Error != b.Error || !o.voice.EqualContent(a.Events.IDs(), b.Events.IDs()) {
				continue
			}
			for _, v := range b.Versions() {
				a.AddVersion(v)
			}
			ids := a.Events.IDs()
			for k, id := range b.Events.IDs() {
				o.link(id, ids[k])
				o.discard(id)
			}
			l.RemoveReading(j)
			j--
			merged = true
		}
		a.SortVersions(o.e.piece.Versions)
	}
	return merged
}
