package game

import "math"

// Aggregate fuses keyboard and device state into one ControlInput.
// Keyboard steering overrides the device; keyboard pedals combine by max.
func Aggregate(kb KeyboardState, dev *DeviceSample) ControlInput {
	var c ControlInput

	deviceSteer := 0.0
	if dev != nil {
		deviceSteer = steeringAxis(dev)
		c.Steering = deviceSteer

		var gasAxis int
		c.Gas, gasAxis = pedal(dev, GasAxis, BrakeAxis)
		brake, brakeAxis := pedal(dev, BrakeAxis, GasAxis)
		if brakeAxis != gasAxis {
			c.Brake = brake
		}

		if c.Gas == 0 && c.Brake == 0 {
			if dev.button(GasButton) {
				c.Gas = 1
			}
			if dev.button(BrakeButton) {
				c.Brake = 1
			}
		}
	}

	if kb.Forward {
		c.Gas = math.Max(c.Gas, 1)
	}
	if kb.Backward {
		c.Brake = math.Max(c.Brake, 1)
	}
	if kb.SteerLeft {
		c.Steering = -1
	}
	if kb.SteerRight {
		c.Steering = 1
	}

	c.Gas = clamp(c.Gas, 0, 1)
	c.Brake = clamp(c.Brake, 0, 1)
	c.Steering = clamp(c.Steering, -1, 1)

	switch {
	case dev != nil && deviceSteer != 0 && !kb.Steering():
		c.Source = SourceDevice
	case kb.Steering() && c.Steering != 0:
		c.Source = SourceKeyboard
	default:
		c.Source = SourceDefault
	}
	return c
}

func steeringAxis(dev *DeviceSample) float64 {
	v, ok := dev.axis(SteeringAxis)
	if !ok || math.Abs(v) < SteeringDeadzone {
		return 0
	}
	return v
}

// pedal reads primary, falling back to alternate when primary is missing or
// at rest. It returns the depression in [0,1] and the axis it came from, or
// -1 when neither axis is pressed.
func pedal(dev *DeviceSample, primary, alternate int) (float64, int) {
	idx := primary
	raw, ok := dev.axis(primary)
	if !ok || raw >= PedalRest {
		idx = alternate
		raw, ok = dev.axis(alternate)
	}
	if !ok || raw >= PedalRest {
		return 0, -1
	}
	return (1 - raw) / 2, idx
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
