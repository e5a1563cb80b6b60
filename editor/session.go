package editor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mensura/mensura"
)

type (
	// Session is one editing session: an Engine, a clipboard and a cursor.
	// All of its state belongs to the goroutine running Run; other
	// goroutines use Do.
	Session struct {
		engine    *Engine
		broker    *Broker
		clipboard []*mensura.Event
		cursor    Cursor
		blink     bool
		interval  time.Duration
		logger    *slog.Logger
	}

	// Cursor points at an event of the active view. Highlight is the other
	// end of a highlighted range [min(Index, Highlight), max(Index,
	// Highlight)], or -1 when nothing is highlighted.
	Cursor struct {
		Section, Voice int
		Index          int
		Highlight      int
	}
)

const DefaultBlinkInterval = 500 * time.Millisecond

func NewSession(engine *Engine, broker *Broker) *Session {
	return &Session{
		engine:   engine,
		broker:   broker,
		cursor:   Cursor{Highlight: -1},
		interval: DefaultBlinkInterval,
		logger:   engine.logger,
	}
}

// SetBlinkInterval changes the cursor blink period. Call before Run.
func (s *Session) SetBlinkInterval(d time.Duration) { s.interval = d }

func (s *Session) Engine() *Engine { return s.engine }

func (s *Session) Cursor() Cursor { return s.cursor }

// SetCursor moves the cursor, clamping the index to the view.
func (s *Session) SetCursor(c Cursor) {
	n := s.engine.View(c.Section, c.Voice).Len()
	c.Index = min(max(c.Index, 0), n-1)
	if c.Highlight >= n {
		c.Highlight = n - 1
	}
	s.cursor = c
	s.redraw()
}

func (s *Session) Clipboard() []*mensura.Event { return s.clipboard }

// Run handles messages until ctx is done. It is the only goroutine that
// mutates the document.
func (s *Session) Run(ctx context.Context) error {
	go s.blinker(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.broker.ToEditor:
			s.handle(msg)
		}
	}
}

func (s *Session) blinker(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			TrySend(s.broker.ToEditor, MsgToEditor{Blink: true})
		}
	}
}

func (s *Session) handle(msg MsgToEditor) {
	if msg.Blink {
		s.blink = !s.blink
		s.redraw()
	}
	switch d := msg.Data.(type) {
	case command:
		d.fn(s)
		close(d.done)
	case func(*Session):
		d(s)
	}
}

// Do runs fn on the edit goroutine and waits for it to finish.
func (s *Session) Do(ctx context.Context, fn func(*Session)) error {
	c := command{fn: fn, done: make(chan struct{})}
	select {
	case s.broker.ToEditor <- MsgToEditor{Data: c}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) redraw() {
	TrySend(s.broker.ToGUI, any(RedrawMsg{Cursor: s.cursor, Blink: s.blink}))
}

func (s *Session) alert(err error) {
	s.logger.Info("command refused", "err", err)
	TrySend(s.broker.ToGUI, any(AlertMsg{Err: err}))
}

// apply moves the cursor after an edit. The cursor goes to index and the
// highlight end is carried along through the remapping.
func (s *Session) apply(r Result, index int) {
	if s.cursor.Highlight >= 0 {
		if h, ok := r.Remap(s.cursor.Highlight); ok {
			s.cursor.Highlight = h
		} else {
			s.cursor.Highlight = -1
		}
	}
	if index >= 0 {
		s.cursor.Index = index
	}
	s.SetCursor(s.cursor)
}

func (s *Session) selection() (begin, end int) {
	c := s.cursor
	if c.Highlight < 0 {
		return c.Index, c.Index + 1
	}
	return min(c.Index, c.Highlight), max(c.Index, c.Highlight) + 1
}

// Insert inserts ev at the cursor and moves the cursor past it.
func (s *Session) Insert(ev *mensura.Event) error {
	c := s.cursor
	r, err := s.engine.Insert(c.Section, c.Voice, c.Index, ev)
	if err != nil {
		s.alert(err)
		return err
	}
	s.apply(r, r.Index+1)
	return nil
}

// Actions

type (
	deleteSelection Session
	copySelection   Session
	cutSelection    Session
	pasteClipboard  Session
	consolidateHere Session
	deleteReading   Session
	promoteReading  Session
)

// DeleteSelection deletes the highlighted range, or the event at the cursor.
func (s *Session) DeleteSelection() Action { return MakeAction((*deleteSelection)(s)) }
func (s *deleteSelection) Enabled() bool {
	begin, end := (*Session)(s).selection()
	m := s.engine.View(s.cursor.Section, s.cursor.Voice)
	for i := begin; i < end && i < m.Len(); i++ {
		if m.Event(i).Kind() != mensura.SectionEndKind {
			return true
		}
	}
	return false
}
func (s *deleteSelection) Do() {
	ss := (*Session)(s)
	c := s.cursor
	begin, end := ss.selection()
	var r Result
	var err error
	if end-begin == 1 {
		r, err = s.engine.Delete(c.Section, c.Voice, begin)
	} else {
		r, err = s.engine.DeleteRange(c.Section, c.Voice, begin, end)
	}
	if err != nil {
		ss.alert(err)
		return
	}
	s.cursor.Highlight = -1
	ss.apply(r, r.Index)
}

func (s *Session) CopySelection() Action { return MakeAction((*copySelection)(s)) }
func (s *copySelection) Do() {
	begin, end := (*Session)(s).selection()
	s.clipboard = s.engine.CopyRange(s.cursor.Section, s.cursor.Voice, begin, end)
}

func (s *Session) CutSelection() Action { return MakeAction((*cutSelection)(s)) }
func (s *cutSelection) Enabled() bool   { return (*deleteSelection)(s).Enabled() }
func (s *cutSelection) Do() {
	(*copySelection)(s).Do()
	(*deleteSelection)(s).Do()
}

// Paste inserts the clipboard at the cursor.
func (s *Session) Paste() Action        { return MakeAction((*pasteClipboard)(s)) }
func (s *pasteClipboard) Enabled() bool { return len(s.clipboard) > 0 }
func (s *pasteClipboard) Do() {
	c := s.cursor
	r, err := s.engine.Paste(c.Section, c.Voice, c.Index, s.clipboard)
	if err != nil {
		(*Session)(s).alert(err)
		return
	}
	(*Session)(s).apply(r, r.Index+1)
}

func (s *Session) location() (mensura.LocationID, bool) {
	return s.engine.LocationAt(s.cursor.Section, s.cursor.Voice, s.cursor.Index)
}

// ConsolidateHere merges equal readings at the location under the cursor.
func (s *Session) ConsolidateHere() Action { return MakeAction((*consolidateHere)(s)) }
func (s *consolidateHere) Enabled() bool {
	_, ok := (*Session)(s).location()
	return ok
}
func (s *consolidateHere) Do() {
	ss := (*Session)(s)
	loc, _ := ss.location()
	r, err := s.engine.ConsolidateReadings(s.cursor.Section, s.cursor.Voice, loc)
	if err != nil {
		ss.alert(err)
		return
	}
	ss.apply(r, -1)
}

// DeleteReadingHere removes the active version's reading at the location
// under the cursor.
func (s *Session) DeleteReadingHere() Action { return MakeAction((*deleteReading)(s)) }
func (s *deleteReading) Enabled() bool {
	ss := (*Session)(s)
	loc, ok := ss.location()
	if !ok {
		return false
	}
	l := ss.engine.voice(s.cursor.Section, s.cursor.Voice).Location(loc)
	r, _ := l.ReadingFor(s.engine.Current())
	return r != nil
}
func (s *deleteReading) Do() {
	ss := (*Session)(s)
	loc, _ := ss.location()
	r, err := s.engine.DeleteVariantReading(s.cursor.Section, s.cursor.Voice, loc, s.engine.Current())
	if err != nil {
		ss.alert(err)
		return
	}
	ss.apply(r, r.follow(s.cursor.Index))
}

// PromoteReadingHere makes the active version's reading at the location
// under the cursor the default content.
func (s *Session) PromoteReadingHere() Action { return MakeAction((*promoteReading)(s)) }
func (s *promoteReading) Enabled() bool       { return (*deleteReading)(s).Enabled() }
func (s *promoteReading) Do() {
	ss := (*Session)(s)
	loc, _ := ss.location()
	l := ss.engine.voice(s.cursor.Section, s.cursor.Voice).Location(loc)
	_, i := l.ReadingFor(s.engine.Current())
	r, err := s.engine.SetReadingAsDefault(s.cursor.Section, s.cursor.Voice, loc, i)
	if err != nil {
		ss.alert(err)
		return
	}
	ss.apply(r, r.follow(s.cursor.Index))
}
