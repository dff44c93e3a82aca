package game

const (
	SteeringDeadzone   = 0.15 // wheel axis 0 noise floor
	PedalRest          = 0.95 // raw pedal axes at or above this count as released
	ClutchEngagedBelow = 0.8
	AxisLogDelta       = 0.1

	SteeringAxis = 0
	GasAxis      = 1
	BrakeAxis    = 2
	ClutchAxis   = 3
	BrakeButton  = 6 // left trigger
	GasButton    = 7 // right trigger

	AccelGain            = 0.3
	BrakeGain            = 0.8
	BrakeThreshold       = 0.1 // any brake above this suppresses throttle
	GroundFriction       = 0.98
	MaxSpeed             = 200.0
	MaxReverseSpeed      = MaxSpeed / 2
	Wheelbase            = 2.6
	FrontAngleGain       = 0.8
	IntegrationStep      = 0.01
	SteerMinSpeed        = 0.1 // no steering authority at or below this
	TurnRadiusEpsilon    = 0.001
	SteeringDampingFloor = 0.3
	SteeringDampingSlope = 0.7
	MotionScale          = 0.1
	GroundClearance      = 0.1
	WheelVisualGain      = 1.5

	CameraHeight       = 8.0
	CameraBackDistance = 15.0
	LookAheadRange     = 50.0

	SpeedReadoutScale = 2.0 // abstract speed -> km/h panel
)
