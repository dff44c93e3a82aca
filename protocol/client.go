package protocol

// Messages coming in from the browser.

type Hello struct {
	V       int    `json:"v"`                 // version
	Name    string `json:"name,omitempty"`    // optional driver name
	Variant string `json:"variant,omitempty"` // empty means server default
}

// Keys is the logical key state, already mapped from WASD/arrows by the page.
type Keys struct {
	Forward  bool `json:"forward,omitempty"`
	Backward bool `json:"backward,omitempty"`
	Left     bool `json:"left,omitempty"`
	Right    bool `json:"right,omitempty"`
}

// Pad is one navigator.getGamepads() entry. A null axis is one the browser
// reported as undefined.
type Pad struct {
	Index   int        `json:"index"`
	Axes    []*float64 `json:"axes"`
	Buttons []bool     `json:"buttons"`
}

type Input struct {
	Seq  uint32 `json:"seq"`
	Keys Keys   `json:"keys"`
	Pad  *Pad   `json:"pad,omitempty"`
}

type PadInfo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
}

// Devices is the page's connected-pad list, sent about once a second.
type Devices struct {
	Pads []PadInfo `json:"pads"`
}
