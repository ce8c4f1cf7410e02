package rotator

import "fmt"

// Axis describes how one device axis maps onto the corresponding sky
// coordinate: Dir is 1 when the axis turns the same way as the
// coordinate and -1 when it is reversed, Offset is the coordinate value
// at the axis zero, in degrees.
type Axis struct {
	Dir    float64 `yaml:"dir"`
	Offset float64 `yaml:"offset"`
}

func (a Axis) Validate() error {
	if a.Dir != 1 && a.Dir != -1 {
		return fmt.Errorf("axis dir must be 1 or -1, got %v", a.Dir)
	}
	return nil
}

// Mount converts between device-native pan/tilt and az/el.
type Mount struct {
	Azimuth   Axis `yaml:"azimuth"`
	Elevation Axis `yaml:"elevation"`
}

func (m Mount) Validate() error {
	if err := m.Azimuth.Validate(); err != nil {
		return fmt.Errorf("azimuth: %w", err)
	}
	if err := m.Elevation.Validate(); err != nil {
		return fmt.Errorf("elevation: %w", err)
	}
	return nil
}

// wrapOnce applies a single period correction. Values more than one
// period out of range are passed through untouched.
func wrapOnce(angle float64) float64 {
	if angle < 0 {
		angle += 360
	} else if angle > 360 {
		angle -= 360
	}
	return angle
}

// ToAzEl converts a device pan/tilt into azimuth/elevation. Azimuth is
// wrapped into [0, 360); elevation is left unwrapped.
func (m Mount) ToAzEl(pan, tilt float64) (az, el float64) {
	az = wrapOnce(pan*m.Azimuth.Dir + m.Azimuth.Offset)
	el = tilt*m.Elevation.Dir + m.Elevation.Offset
	return az, el
}

// ToPanTilt converts an azimuth/elevation into a device pan/tilt, the
// inverse of ToAzEl. Pan gets the same single-period correction.
func (m Mount) ToPanTilt(az, el float64) (pan, tilt float64) {
	pan = wrapOnce((az - m.Azimuth.Offset) / m.Azimuth.Dir)
	tilt = (el - m.Elevation.Offset) / m.Elevation.Dir
	return pan, tilt
}
