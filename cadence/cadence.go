// Package cadence decides, once per refresh cycle, whether the current script
// should run.
package cadence

import (
	"fmt"
	"strings"
)

// Mode is the policy governing when a run fires.
type Mode int

const (
	// OnCompileSuccess runs whenever this cycle's load succeeded.
	OnCompileSuccess Mode = iota
	// EachFrame runs every cycle and asks the front end to keep refreshing.
	EachFrame
	// OnInteract runs when the user interacted with the notebook this cycle.
	OnInteract
	// Manual runs only on an explicit request.
	Manual
)

// Default is the mode of a new or restored document that names none.
const Default = OnCompileSuccess

var modeNames = map[Mode]string{
	EachFrame:        "each-frame",
	OnInteract:       "on-interact",
	OnCompileSuccess: "on-compile",
	Manual:           "manual",
}

// Modes lists every mode in toggle order.
var Modes = []Mode{EachFrame, OnInteract, OnCompileSuccess, Manual}

// Events are the per-cycle facts a decision depends on.
type Events struct {
	// Interacted is true when the user touched the notebook this cycle.
	Interacted bool
	// Compiled is true only when a load happened this cycle and succeeded.
	// An artifact left over from an earlier cycle does not count.
	Compiled bool
	// RunRequested is an explicit run action in this cycle.
	RunRequested bool
}

// Decision is the outcome for one cycle.
type Decision struct {
	Run bool
	// Continuous asks the front end to schedule another cycle immediately.
	Continuous bool
}

// Evaluate decides whether to run this cycle. It holds no state; nothing is
// queued for later cycles.
func (m Mode) Evaluate(ev Events) Decision {
	switch m {
	case EachFrame:
		return Decision{Run: true, Continuous: true}
	case OnInteract:
		return Decision{Run: ev.Interacted}
	case OnCompileSuccess:
		return Decision{Run: ev.Compiled}
	case Manual:
		return Decision{Run: ev.RunRequested}
	default:
		return Decision{}
	}
}

// Next returns the mode after m in toggle order.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Default
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names produced by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown run cadence %q (want one of %s)", s, strings.Join(Names(), ", "))
}

// Names returns the mode names in toggle order.
func Names() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = m.String()
	}
	return names
}

func (m Mode) MarshalText() ([]byte, error) {
	s, ok := modeNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown run cadence %d", int(m))
	}
	return []byte(s), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
