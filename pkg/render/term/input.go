package term

import "github.com/gdamore/tcell/v2"

// Command is what a key press asks the viewer to do.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandTogglePause
	CommandRestart
	CommandNext
	CommandPrev
	CommandRedraw
)

// Interpret maps a screen event to a viewer command. Escape, Ctrl-C and
// q quit; space pauses; r restarts; n and p step through actions.
func Interpret(ev tcell.Event) Command {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return CommandQuit
		case tcell.KeyRight:
			return CommandNext
		case tcell.KeyLeft:
			return CommandPrev
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return CommandQuit
			case ' ':
				return CommandTogglePause
			case 'r', 'R':
				return CommandRestart
			case 'n', 'N':
				return CommandNext
			case 'p', 'P':
				return CommandPrev
			}
		}
	case *tcell.EventResize:
		return CommandRedraw
	}
	return CommandNone
}
