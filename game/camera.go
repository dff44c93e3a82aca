package game

// CameraPose is where the viewpoint sits and what it looks at.
type CameraPose struct {
	Position   Vec3
	LookTarget Vec3
}

var (
	cameraOffset = Vec3{X: CameraBackDistance}
	localForward = Vec3{X: -1}
)

// Project rigidly attaches the chase camera to s. There is no smoothing, so
// a heading change moves the camera in the same frame.
func Project(s VehicleState) CameraPose {
	pos := s.Position.Add(Vec3{Y: CameraHeight}).Add(cameraOffset.RotateY(s.Heading))
	forward := localForward.RotateY(s.Heading)
	look := pos.Add(forward.Scale(LookAheadRange))
	look.Y = pos.Y
	return CameraPose{Position: pos, LookTarget: look}
}
