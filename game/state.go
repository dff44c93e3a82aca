package game

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{v.X * k, v.Y * k, v.Z * k}
}

// RotateY rotates v about the vertical axis by angle radians (right-handed, y up).
func (v Vec3) RotateY(angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// Pose is a ground position plus yaw.
type Pose struct {
	Position Vec3
	Heading  float64
}

// VehicleState is the authoritative car state. Only Tick produces new values.
type VehicleState struct {
	Position        Vec3
	Heading         float64
	Speed           float64
	Acceleration    float64 // last tick only
	FrontWheelAngle float64
}

func NewVehicle(start Pose) VehicleState {
	pos := start.Position
	pos.Y = GroundClearance
	return VehicleState{Position: pos, Heading: start.Heading}
}

// DriveMode is a tagged view of the numeric state. Physics never branches on it.
type DriveMode uint8

const (
	ModeIdle DriveMode = iota
	ModeAccelerating
	ModeBraking
	ModeReversing
)

func (m DriveMode) String() string {
	switch m {
	case ModeAccelerating:
		return "accelerating"
	case ModeBraking:
		return "braking"
	case ModeReversing:
		return "reversing"
	default:
		return "idle"
	}
}

func Mode(s VehicleState) DriveMode {
	switch {
	case s.Speed < -SteerMinSpeed:
		return ModeReversing
	case s.Acceleration < 0 && s.Speed > SteerMinSpeed:
		return ModeBraking
	case s.Acceleration > 0:
		return ModeAccelerating
	default:
		return ModeIdle
	}
}

// WheelTurn is the cosmetic yaw for the front wheel meshes.
func WheelTurn(s VehicleState) float64 {
	return -s.FrontWheelAngle * WheelVisualGain
}

func SpeedReadout(s VehicleState) int {
	return int(math.Round(math.Abs(s.Speed) * SpeedReadoutScale))
}

func HeadingDegrees(s VehicleState) float64 {
	return s.Heading * 180 / math.Pi
}
