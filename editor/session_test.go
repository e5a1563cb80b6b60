package editor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mensura/mensura"
	"github.com/mensura/mensura/editor"
)

func runSession(t *testing.T, e *editor.Engine, blink time.Duration) (*editor.Session, *editor.Broker) {
	t.Helper()
	b := editor.NewBroker()
	s := editor.NewSession(e, b)
	s.SetBlinkInterval(blink)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	})
	return s, b
}

// do runs fn on the edit goroutine. fn must not call t.Fatal.
func do(t *testing.T, s *editor.Session, fn func(*editor.Session)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Do(ctx, fn); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

// waitFor receives GUI messages until match accepts one.
func waitFor(t *testing.T, b *editor.Broker, match func(any) bool) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-b.ToGUI:
			if match(msg) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for a GUI message")
		}
	}
}

func TestSessionInsert(t *testing.T) {
	e := setup(t, fourNotes, "A")
	s, b := runSession(t, e, time.Hour)
	rest := parse(t, "rest(M)")
	var err error
	var cursor editor.Cursor
	do(t, s, func(s *editor.Session) {
		s.SetCursor(editor.Cursor{Index: 1, Highlight: -1})
		err = s.Insert(rest)
		cursor = s.Cursor()
	})
	if err != nil {
		t.Fatal(err)
	}
	if cursor.Index != 2 {
		t.Errorf("cursor at %d, want 2", cursor.Index)
	}
	waitFor(t, b, func(m any) bool {
		r, ok := m.(editor.RedrawMsg)
		return ok && r.Cursor.Index == 2
	})
	expect(t, "view", view(e), []string{"clef(C,C4)", "rest(M)", "note(SB,C4)", "note(SB,D4)", "note(SB,E4)", "end"})
}

func TestSessionAlert(t *testing.T) {
	e := setup(t, fourNotes)
	s, b := runSession(t, e, time.Hour)
	end := parse(t, "end")
	var err error
	do(t, s, func(s *editor.Session) { err = s.Insert(end) })
	if !errors.Is(err, mensura.ErrProtectedEvent) {
		t.Fatalf("err = %v", err)
	}
	waitFor(t, b, func(m any) bool {
		a, ok := m.(editor.AlertMsg)
		return ok && errors.Is(a.Err, mensura.ErrProtectedEvent)
	})
}

func TestSessionClipboard(t *testing.T) {
	e := setup(t, fourNotes)
	s, _ := runSession(t, e, time.Hour)
	do(t, s, func(s *editor.Session) {
		if s.Paste().Enabled() {
			t.Error("paste enabled with an empty clipboard")
		}
		s.SetCursor(editor.Cursor{Index: 1, Highlight: 2})
		s.CopySelection().Do()
		expect(t, "clipboard", texts(s.Clipboard()), []string{"note(SB,C4)", "note(SB,D4)"})

		s.SetCursor(editor.Cursor{Index: 3, Highlight: -1})
		s.Paste().Do()
		if got := s.Cursor().Index; got != 5 {
			t.Errorf("cursor after paste at %d, want 5", got)
		}
	})
	expect(t, "view", view(e), []string{"clef(C,C4)", "note(SB,C4)", "note(SB,D4)", "note(SB,C4)", "note(SB,D4)", "note(SB,E4)", "end"})

	do(t, s, func(s *editor.Session) {
		s.SetCursor(editor.Cursor{Index: 2, Highlight: 1})
		s.DeleteSelection().Do()
		if c := s.Cursor(); c.Index != 1 || c.Highlight != -1 {
			t.Errorf("cursor after delete = %+v", c)
		}
	})
	expect(t, "view", view(e), []string{"clef(C,C4)", "note(SB,C4)", "note(SB,D4)", "note(SB,E4)", "end"})

	do(t, s, func(s *editor.Session) {
		s.SetCursor(editor.Cursor{Index: 3, Highlight: -1})
		s.CutSelection().Do()
		expect(t, "clipboard", texts(s.Clipboard()), []string{"note(SB,E4)"})

		s.SetCursor(editor.Cursor{Index: 100, Highlight: -1})
		if got := s.Cursor().Index; got != 3 {
			t.Errorf("cursor was not clamped: %d", got)
		}
		if s.DeleteSelection().Enabled() {
			t.Error("deleting the section end should be disabled")
		}
	})
	expect(t, "view", view(e), []string{"clef(C,C4)", "note(SB,C4)", "note(SB,D4)", "end"})
}

func TestSessionReadingActions(t *testing.T) {
	e, _ := withReadings(t, []string{"A", "B"}, rd{"A", "note(SB,A4)"})
	activate(t, e, "A")
	s, _ := runSession(t, e, time.Hour)
	do(t, s, func(s *editor.Session) {
		s.SetCursor(editor.Cursor{Index: 1, Highlight: -1})
		if s.DeleteReadingHere().Enabled() || s.ConsolidateHere().Enabled() {
			t.Error("reading actions enabled outside a location")
		}
		s.SetCursor(editor.Cursor{Index: 3, Highlight: -1})
		if !s.PromoteReadingHere().Enabled() {
			t.Error("promote disabled on the active version's reading")
			return
		}
		s.PromoteReadingHere().Do()
	})
	expect(t, "Default", reads(t, e, "Default"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,A4)", "note(SB,E4)", "end"})
	expect(t, "B", reads(t, e, "B"), []string{"clef(C,C4)", "note(SB,G4)", "note(SB,F4)", "note(SB,E4)", "end"})

	// B now holds the old default content; A reads the new default and has
	// nothing to delete.
	do(t, s, func(s *editor.Session) {
		s.SetCursor(editor.Cursor{Index: 3, Highlight: -1})
		if s.DeleteReadingHere().Enabled() {
			t.Error("delete reading enabled without a reading of the active version")
		}
	})
	valid(t, e)
}

func TestSessionBlink(t *testing.T) {
	e := setup(t, fourNotes)
	_, b := runSession(t, e, time.Millisecond)
	waitFor(t, b, func(m any) bool {
		r, ok := m.(editor.RedrawMsg)
		return ok && r.Blink
	})
}
