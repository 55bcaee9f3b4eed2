package app

// State is the lifecycle state of an App.
//
// StateNone is both initial and terminal: every run or deploy, successful or
// not, ends back at StateNone.
type State int

const (
	StateNone State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
