package game

// Sensitivity is the steering gain per active source. Wheels deflect a little
// and precisely, keys are all-or-nothing.
type Sensitivity struct {
	Device   float64 `yaml:"device" json:"device"`
	Keyboard float64 `yaml:"keyboard" json:"keyboard"`
	Default  float64 `yaml:"default" json:"default"`
}

var DefaultSensitivity = Sensitivity{Device: 1.5, Keyboard: 0.5, Default: 1.0}

func (s Sensitivity) For(src Source) float64 {
	switch src {
	case SourceDevice:
		return s.Device
	case SourceKeyboard:
		return s.Keyboard
	default:
		return s.Default
	}
}

// Arbitrate returns the steering command fed to the dynamics model.
func (s Sensitivity) Arbitrate(c ControlInput) float64 {
	return c.Steering * s.For(c.Source)
}
