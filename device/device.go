// Package device decides which connected pad, if any, feeds the simulation.
//
// Pads are recognised by name. The racing page accepted any pad while the
// sandbox page insisted on a wheel-like name; Policy makes that a setting.
package device

import (
	"strings"
	"time"
)

// CheckInterval is how often the pad list is re-evaluated. The next frame
// tick reads whatever the last refresh selected.
const CheckInterval = time.Second

var DefaultKeywords = []string{"g29", "logitech", "driving"}

type Info struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
}

type Policy struct {
	Keywords     []string
	AllowGeneric bool
}

func DefaultPolicy() Policy {
	return Policy{Keywords: append([]string(nil), DefaultKeywords...), AllowGeneric: true}
}

// Recognize reports whether the pad may drive the car.
func (p Policy) Recognize(pad Info) bool {
	if p.Wheel(pad) {
		return true
	}
	return p.AllowGeneric
}

// Wheel reports whether the pad name matches one of the wheel keywords.
func (p Policy) Wheel(pad Info) bool {
	id := strings.ToLower(pad.ID)
	for _, k := range p.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(id, k) {
			return true
		}
	}
	return false
}

type Transition uint8

const (
	Unchanged Transition = iota
	Connected
	Disconnected
	Switched
)

func (t Transition) String() string {
	switch t {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Switched:
		return "switched"
	default:
		return "unchanged"
	}
}

type Status struct {
	Connected bool `json:"connected"`
	Pad       Info `json:"pad"`
	Wheel     bool `json:"wheel"`
}

// Monitor tracks the selected pad across refreshes. Not safe for concurrent
// use; it lives on the same goroutine as the tick.
type Monitor struct {
	policy  Policy
	current *Info
}

func NewMonitor(p Policy) *Monitor {
	return &Monitor{policy: p}
}

// Refresh re-evaluates the pad list. The current pad is kept while it is
// still present and recognised; otherwise a wheel is preferred over a
// generic pad, then the lowest index wins.
func (m *Monitor) Refresh(pads []Info) (Status, Transition) {
	prev := m.current

	if prev != nil {
		for _, p := range pads {
			if p.Index == prev.Index && p.ID == prev.ID && m.policy.Recognize(p) {
				return m.Status(), Unchanged
			}
		}
	}

	next := m.pick(pads)
	m.current = next

	switch {
	case prev == nil && next == nil:
		return m.Status(), Unchanged
	case prev == nil:
		return m.Status(), Connected
	case next == nil:
		return m.Status(), Disconnected
	default:
		return m.Status(), Switched
	}
}

func (m *Monitor) pick(pads []Info) *Info {
	var best *Info
	bestWheel := false
	for i := range pads {
		p := pads[i]
		if !m.policy.Recognize(p) {
			continue
		}
		wheel := m.policy.Wheel(p)
		if best == nil || (wheel && !bestWheel) || (wheel == bestWheel && p.Index < best.Index) {
			best = &p
			bestWheel = wheel
		}
	}
	return best
}

// Connected returns the selected pad.
func (m *Monitor) Connected() (Info, bool) {
	if m.current == nil {
		return Info{}, false
	}
	return *m.current, true
}

func (m *Monitor) Status() Status {
	if m.current == nil {
		return Status{}
	}
	return Status{Connected: true, Pad: *m.current, Wheel: m.policy.Wheel(*m.current)}
}
