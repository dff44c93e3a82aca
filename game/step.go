package game

import "math"

// Tick advances the vehicle by one frame using a bicycle-model turn.
// It is pure: the same inputs always give the same state.
func Tick(s VehicleState, c ControlInput, steer float64) VehicleState {
	if c.Brake > BrakeThreshold {
		s.Acceleration = -c.Brake * BrakeGain
	} else {
		s.Acceleration = c.Gas * AccelGain
	}

	s.Speed = (s.Speed + s.Acceleration) * GroundFriction
	s.Speed = clamp(s.Speed, -MaxReverseSpeed, MaxSpeed)

	if math.Abs(s.Speed) > SteerMinSpeed {
		fwa := steer * FrontAngleGain
		turnRadius := Wheelbase / math.Tan(math.Abs(fwa)+TurnRadiusEpsilon)
		angularVelocity := -(s.Speed / turnRadius) * sign(fwa)

		speedFactor := math.Abs(s.Speed) / MaxSpeed
		damping := math.Max(SteeringDampingFloor, 1-speedFactor*SteeringDampingSlope)
		s.Heading += angularVelocity * IntegrationStep * damping
		s.FrontWheelAngle = fwa
	}

	// Heading 0 drives along -X; the split below is the renderer's convention.
	forward := math.Sin(s.Heading) * s.Speed * MotionScale
	lateral := -math.Cos(s.Heading) * s.Speed * MotionScale
	s.Position.X += lateral
	s.Position.Z += forward
	s.Position.Y = GroundClearance

	return s
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
