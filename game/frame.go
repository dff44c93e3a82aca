package game

// Frame is everything one tick produces for the renderer.
type Frame struct {
	Tick      int
	Control   ControlInput
	Steering  float64
	Vehicle   VehicleState
	Camera    CameraPose
	WheelTurn float64
}

// Sim runs the per-frame pipeline for one car. It is not safe for concurrent
// use; the scheduler that owns it calls Advance once per display refresh.
type Sim struct {
	variant Variant
	vehicle VehicleState
	tick    int
}

func NewSim(v Variant) *Sim {
	return &Sim{variant: v, vehicle: NewVehicle(v.Start)}
}

func (s *Sim) Variant() Variant { return s.variant }

func (s *Sim) Vehicle() VehicleState { return s.vehicle }

func (s *Sim) Tick() int { return s.tick }

// Advance runs aggregate, arbitrate, dynamics and camera in that order.
func (s *Sim) Advance(in InputSnapshot) Frame {
	s.tick++

	control := Aggregate(in.Keyboard, in.Device)
	steer := s.variant.Sensitivity.Arbitrate(control)
	s.vehicle = Tick(s.vehicle, control, steer)

	return Frame{
		Tick:      s.tick,
		Control:   control,
		Steering:  steer,
		Vehicle:   s.vehicle,
		Camera:    Project(s.vehicle),
		WheelTurn: WheelTurn(s.vehicle),
	}
}
