package game

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestTickFromRestWithFullGas(t *testing.T) {
	s := Tick(VehicleState{}, ControlInput{Gas: 1}, 0)

	if !near(s.Acceleration, 0.3) {
		t.Fatalf("acceleration = %f, want 0.3", s.Acceleration)
	}
	if !near(s.Speed, 0.294) {
		t.Fatalf("speed = %f, want 0.294", s.Speed)
	}
	if s.Heading != 0 {
		t.Fatalf("heading = %f, want 0 with centred steering", s.Heading)
	}
	if !near(s.Position.X, -0.0294) || s.Position.Z != 0 {
		t.Fatalf("position = %+v, want x=-0.0294 z=0", s.Position)
	}
	if s.Position.Y != GroundClearance {
		t.Fatalf("y = %f, want ground clearance %f", s.Position.Y, GroundClearance)
	}
}

func TestTickBrakeWinsOverGas(t *testing.T) {
	s := Tick(VehicleState{}, ControlInput{Gas: 1, Brake: 1}, 0)
	if !near(s.Acceleration, -0.8) {
		t.Fatalf("acceleration = %f, want -0.8", s.Acceleration)
	}
	if !near(s.Speed, -0.784) {
		t.Fatalf("speed = %f, want -0.784", s.Speed)
	}
}

func TestTickBrakeNeverAccelerates(t *testing.T) {
	for _, brake := range []float64{0.11, 0.2, 0.5, 0.99, 1} {
		for _, gas := range []float64{0, 0.5, 1} {
			s := Tick(VehicleState{Speed: 40}, ControlInput{Gas: gas, Brake: brake}, 0)
			if s.Acceleration > 0 {
				t.Fatalf("brake=%f gas=%f gave acceleration %f", brake, gas, s.Acceleration)
			}
		}
	}
}

func TestTickLightBrakeBelowThresholdIsIgnored(t *testing.T) {
	s := Tick(VehicleState{}, ControlInput{Gas: 1, Brake: 0.1}, 0)
	if !near(s.Acceleration, 0.3) {
		t.Fatalf("acceleration = %f, want throttle 0.3 when brake <= threshold", s.Acceleration)
	}
}

func TestTickSpeedStaysInBounds(t *testing.T) {
	fwd := VehicleState{}
	rev := VehicleState{}
	for i := 0; i < 5000; i++ {
		fwd = Tick(fwd, ControlInput{Gas: 1}, 1)
		rev = Tick(rev, ControlInput{Brake: 1}, -1)
		if fwd.Speed > MaxSpeed || fwd.Speed < -MaxReverseSpeed {
			t.Fatalf("tick %d: forward speed %f out of bounds", i, fwd.Speed)
		}
		if rev.Speed > MaxSpeed || rev.Speed < -MaxReverseSpeed {
			t.Fatalf("tick %d: reverse speed %f out of bounds", i, rev.Speed)
		}
	}

	s := Tick(VehicleState{Speed: 1e6}, ControlInput{}, 0)
	if s.Speed != MaxSpeed {
		t.Fatalf("speed = %f, want clamp to %f", s.Speed, MaxSpeed)
	}
	s = Tick(VehicleState{Speed: -1e6}, ControlInput{}, 0)
	if s.Speed != -MaxReverseSpeed {
		t.Fatalf("speed = %f, want clamp to %f", s.Speed, -MaxReverseSpeed)
	}
}

func TestTickCoastDecaysWithoutSignFlip(t *testing.T) {
	for _, start := range []float64{50, -30} {
		s := VehicleState{Speed: start}
		prev := math.Abs(s.Speed)
		for i := 0; i < 2000; i++ {
			s = Tick(s, ControlInput{}, 0)
			if math.Signbit(s.Speed) != math.Signbit(start) && s.Speed != 0 {
				t.Fatalf("start=%f tick %d: speed changed sign to %f", start, i, s.Speed)
			}
			if math.Abs(s.Speed) > prev {
				t.Fatalf("start=%f tick %d: |speed| grew from %f to %f", start, i, prev, math.Abs(s.Speed))
			}
			prev = math.Abs(s.Speed)
		}
		if math.Abs(s.Speed) > 1e-6 {
			t.Fatalf("start=%f: speed %f did not decay to ~0", start, s.Speed)
		}
	}
}

func TestTickIsDeterministic(t *testing.T) {
	in := VehicleState{Position: Vec3{X: 3, Y: 0.1, Z: -7}, Heading: 1.234, Speed: 87.5, FrontWheelAngle: 0.2}
	c := ControlInput{Gas: 0.7, Steering: -0.4, Source: SourceDevice}

	first := Tick(in, c, -0.6)
	for i := 0; i < 100; i++ {
		if got := Tick(in, c, -0.6); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestTickNoSteeringAuthorityNearStop(t *testing.T) {
	in := VehicleState{Heading: 0.5, FrontWheelAngle: 0.3}
	s := Tick(in, ControlInput{}, 1)
	if s.Heading != in.Heading {
		t.Fatalf("heading changed at rest: %f -> %f", in.Heading, s.Heading)
	}
	if s.FrontWheelAngle != in.FrontWheelAngle {
		t.Fatalf("front wheel angle changed at rest: %f -> %f", in.FrontWheelAngle, s.FrontWheelAngle)
	}
}

func TestTickSteerRightTurnsNegativeHeading(t *testing.T) {
	s := Tick(VehicleState{Speed: 20}, ControlInput{}, 0.5)
	if s.Heading >= 0 {
		t.Fatalf("heading = %f, want negative for right steer while moving forward", s.Heading)
	}
	if !near(s.FrontWheelAngle, 0.4) {
		t.Fatalf("front wheel angle = %f, want 0.4", s.FrontWheelAngle)
	}
	if !near(WheelTurn(s), -0.6) {
		t.Fatalf("wheel turn = %f, want -0.6", WheelTurn(s))
	}

	rev := Tick(VehicleState{Speed: -20}, ControlInput{}, 0.5)
	if rev.Heading <= 0 {
		t.Fatalf("heading = %f, want positive for right steer while reversing", rev.Heading)
	}
}

func TestTickSteeringAuthorityShrinksWithSpeed(t *testing.T) {
	const steer = 0.5
	prevRatio := math.Inf(1)
	for _, speed := range []float64{1, 10, 40, 80, 120, 160, 200} {
		s := Tick(VehicleState{Speed: speed}, ControlInput{}, steer)
		delta := math.Abs(s.Heading)
		if delta <= 0 {
			t.Fatalf("speed=%f: no heading change", speed)
		}
		// Turn per unit distance covered this tick.
		ratio := delta / math.Abs(s.Speed)
		if ratio > prevRatio+eps {
			t.Fatalf("speed=%f: turn per distance rose from %g to %g", speed, prevRatio, ratio)
		}
		prevRatio = ratio
	}

	// The damping floor keeps some authority at top speed.
	fwa := steer * FrontAngleGain
	radius := Wheelbase / math.Tan(fwa+TurnRadiusEpsilon)
	top := Tick(VehicleState{Speed: MaxSpeed / GroundFriction}, ControlInput{}, steer)
	want := top.Speed / radius * IntegrationStep * SteeringDampingFloor
	if math.Abs(math.Abs(top.Heading)-want) > 1e-9 {
		t.Fatalf("top-speed heading delta = %g, want floor-damped %g", math.Abs(top.Heading), want)
	}
}

func TestTickMovesAlongHeading(t *testing.T) {
	s := Tick(VehicleState{Heading: math.Pi / 2, Speed: 10 / GroundFriction}, ControlInput{}, 0)
	if math.Abs(s.Position.X) > 1e-9 || !near(s.Position.Z, 1) {
		t.Fatalf("position = %+v, want (0, _, 1) for heading pi/2", s.Position)
	}
}

func TestModeTags(t *testing.T) {
	cases := []struct {
		s    VehicleState
		want DriveMode
	}{
		{VehicleState{}, ModeIdle},
		{VehicleState{Speed: 10, Acceleration: 0.3}, ModeAccelerating},
		{VehicleState{Speed: 10, Acceleration: -0.8}, ModeBraking},
		{VehicleState{Speed: -10, Acceleration: -0.8}, ModeReversing},
		{VehicleState{Speed: 10}, ModeIdle},
	}
	for _, c := range cases {
		if got := Mode(c.s); got != c.want {
			t.Fatalf("Mode(%+v) = %s, want %s", c.s, got, c.want)
		}
	}
}

func TestSpeedReadout(t *testing.T) {
	if got := SpeedReadout(VehicleState{Speed: -12.3}); got != 25 {
		t.Fatalf("readout = %d, want 25", got)
	}
	if got := SpeedReadout(VehicleState{Speed: 200}); got != 400 {
		t.Fatalf("readout = %d, want 400", got)
	}
}
