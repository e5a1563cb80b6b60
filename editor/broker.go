package editor

type (
	// Broker carries messages between the edit goroutine and the rest of the
	// program. Everything that touches the document goes through ToEditor
	// and is handled by Session.Run; the GUI listens on ToGUI.
	Broker struct {
		ToEditor chan MsgToEditor
		ToGUI    chan any
	}

	// MsgToEditor is a message to the edit goroutine. Blink ticks are not
	// boxed; everything else travels in Data.
	MsgToEditor struct {
		Blink bool
		Data  any
	}

	// RedrawMsg asks the GUI to redraw the view around the cursor.
	RedrawMsg struct {
		Cursor Cursor
		Blink  bool
	}

	// AlertMsg reports a refused edit.
	AlertMsg struct {
		Err error
	}

	command struct {
		fn   func(*Session)
		done chan struct{}
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToEditor: make(chan MsgToEditor, 1024),
		ToGUI:    make(chan any, 1024),
	}
}

// TrySend sends v on c unless c is full, and reports whether it did.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
		return true
	default:
		return false
	}
}
