package rotator

// Rotator is the position interface the protocol frontends drive.
// Angles are device-native pan/tilt degrees; frontends convert to and
// from az/el with a Mount.
type Rotator interface {
	// SetTargetPanTilt replaces the commanded target position.
	SetTargetPanTilt(pan, tilt float64)
	// PanTilt returns the last observed device position.
	PanTilt() (pan, tilt float64)
	// Stop freezes the rotator by declaring the current position the target.
	Stop()
	// Park sends the rotator to device-native (0, 0).
	Park()
}

type StatusCallback func(status Status)

// Status is a snapshot of the keeper's view of the device.
type Status struct {
	// PanPos and TiltPos are the last positions reported by the device,
	// in decimal degrees.
	PanPos  float64 `json:"pan_pos"`
	TiltPos float64 `json:"tilt_pos"`

	TargetPan  float64 `json:"target_pan"`
	TargetTilt float64 `json:"target_tilt"`

	// Moving indicates the last iteration commanded a nonzero jog.
	Moving bool `json:"moving"`

	// Healthy is cleared after repeated consecutive motor failures and
	// set again on the next successful exchange.
	Healthy  bool `json:"healthy"`
	Failures int  `json:"failures"`
}
