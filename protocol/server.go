package protocol

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type TrackInfo struct {
	Name           string  `json:"name"`
	StraightLength float64 `json:"straightLength"`
	Radius         float64 `json:"radius"`
	Width          float64 `json:"width"`
	StartLine      Vec     `json:"startLine"`
}

type Welcome struct {
	SessionID string    `json:"sessionId"`
	TickHz    int       `json:"tickHz"`
	Variant   string    `json:"variant"`
	Track     TrackInfo `json:"track"`
	Start     Vec       `json:"start"`
	Heading   float64   `json:"heading"`
}

type VehicleSnapshot struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
	Mode    string  `json:"mode"`
}

type CameraSnapshot struct {
	Pos  Vec `json:"pos"`
	Look Vec `json:"look"`
}

type DeviceSnapshot struct {
	Connected bool   `json:"connected"`
	ID        string `json:"id,omitempty"`
	Wheel     bool   `json:"wheel,omitempty"`
}

type State struct {
	Tick       int             `json:"tick"`
	Vehicle    VehicleSnapshot `json:"vehicle"`
	Camera     CameraSnapshot  `json:"camera"`
	WheelTurn  float64         `json:"wheelTurn"`
	SpeedKmh   int             `json:"speedKmh"`
	HeadingDeg float64         `json:"headingDeg"`
	Source     string          `json:"source"`
	Gas        float64         `json:"gas"`
	Brake      float64         `json:"brake"`
	Device     DeviceSnapshot  `json:"device"`
}

const (
	ErrCodeBadHello   = "bad_hello"
	ErrCodeBadVersion = "bad_version"
	ErrCodeVariant    = "unknown_variant"
	ErrCodeOccupied   = "session_occupied"
	ErrCodeBadMessage = "bad_message"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
