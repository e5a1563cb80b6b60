package editor

type (
	// Action is a user command bound to a session. Do runs the command only
	// while it is enabled, so a UI can gray out the ones that are not. Call
	// Do on the edit goroutine, e.g. inside Session.Do.
	Action struct {
		cmd Command
	}

	Command interface {
		Do()
	}

	// Guard is implemented by commands that are only available in some
	// states. A command without a guard is always enabled.
	Guard interface {
		Enabled() bool
	}
)

func MakeAction(c Command) Action { return Action{cmd: c} }

func (a Action) Enabled() bool {
	if a.cmd == nil {
		return false
	}
	if g, ok := a.cmd.(Guard); ok {
		return g.Enabled()
	}
	return true
}

func (a Action) Do() {
	if a.Enabled() {
		a.cmd.Do()
	}
}
