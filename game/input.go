package game

import "math"

// KeyboardState is the logical key set, snapshotted once at tick start.
type KeyboardState struct {
	Forward    bool
	Backward   bool
	SteerLeft  bool
	SteerRight bool
}

func (k KeyboardState) Steering() bool {
	return k.SteerLeft || k.SteerRight
}

// DeviceSample is one poll of a wheel/pad. Unpressed pedal axes rest at +1.
type DeviceSample struct {
	Axes    []float64
	Buttons []bool
}

func (d *DeviceSample) axis(i int) (float64, bool) {
	if d == nil || i < 0 || i >= len(d.Axes) {
		return 0, false
	}
	v := d.Axes[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (d *DeviceSample) button(i int) bool {
	if d == nil || i < 0 || i >= len(d.Buttons) {
		return false
	}
	return d.Buttons[i]
}

// InputSnapshot is everything the aggregator sees for one tick.
// Device is nil when no recognised device is connected.
type InputSnapshot struct {
	Keyboard KeyboardState
	Device   *DeviceSample
}

type Source uint8

const (
	SourceDefault Source = iota
	SourceKeyboard
	SourceDevice
)

func (s Source) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceDevice:
		return "device"
	default:
		return "default"
	}
}

// ControlInput is the normalized control vector for one tick.
type ControlInput struct {
	Gas      float64 // [0,1]
	Brake    float64 // [0,1]
	Steering float64 // [-1,1], before sensitivity
	Source   Source
}

// AxesChanged reports whether cur differs enough from prev to be worth logging.
func AxesChanged(prev, cur []float64) bool {
	if prev == nil || len(prev) != len(cur) {
		return true
	}
	for i := range cur {
		if math.Abs(cur[i]-prev[i]) > AxisLogDelta {
			return true
		}
	}
	return false
}

// ClutchEngaged reports a pressed clutch pedal. The clutch is never used for control.
func ClutchEngaged(d *DeviceSample) bool {
	v, ok := d.axis(ClutchAxis)
	return ok && v < ClutchEngagedBelow
}
