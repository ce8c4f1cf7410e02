package rotator

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var testMount = Mount{
	Azimuth:   Axis{Dir: 1, Offset: 90},
	Elevation: Axis{Dir: -1, Offset: 0},
}

func TestToAzEl(t *testing.T) {
	for _, test := range []struct {
		pan, tilt float64
		az, el    float64
	}{
		{0, 0, 90, 0},
		{10, 5, 100, -5},
		{-100, -57, 350, 57},
		{300, 10, 30, -10},
	} {
		t.Run(fmt.Sprintf("%v,%v", test.pan, test.tilt), func(t *testing.T) {
			az, el := testMount.ToAzEl(test.pan, test.tilt)
			if diff := cmp.Diff([]float64{az, el}, []float64{test.az, test.el}, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("unexpected az/el: got(-)/want(+):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, dir := range []float64{1, -1} {
		for _, offset := range []float64{0, 37.5, 90, -120} {
			m := Mount{
				Azimuth:   Axis{Dir: dir, Offset: offset},
				Elevation: Axis{Dir: dir, Offset: offset},
			}
			for az := 10.0; az < 360; az += 70 {
				for el := -80.0; el <= 80; el += 40 {
					pan, tilt := m.ToPanTilt(az, el)
					gotAz, gotEl := m.ToAzEl(pan, tilt)
					if diff := cmp.Diff([]float64{gotAz, gotEl}, []float64{az, el}, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
						t.Errorf("dir=%v offset=%v az=%v el=%v: round trip mismatch: got(-)/want(+):\n%s", dir, offset, az, el, diff)
					}
				}
			}
		}
	}
}

func TestAzimuthWrapBoundary(t *testing.T) {
	m := Mount{
		Azimuth:   Axis{Dir: 1, Offset: 0},
		Elevation: Axis{Dir: 1, Offset: 0},
	}
	for _, test := range []struct {
		pan  float64
		want float64
	}{
		{-1, 359},
		{0, 0},
		{360, 360},
		{361, 1},
		// More than one period out of range is not corrected further.
		{-361, -1},
		{721, 361},
	} {
		az, _ := m.ToAzEl(test.pan, 0)
		if az != test.want {
			t.Errorf("ToAzEl(%v): az = %v, want %v", test.pan, az, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := testMount.Validate(); err != nil {
		t.Errorf("valid mount rejected: %v", err)
	}
	bad := Mount{Azimuth: Axis{Dir: 0}, Elevation: Axis{Dir: 1}}
	if err := bad.Validate(); err == nil {
		t.Error("mount with dir 0 accepted")
	}
	bad = Mount{Azimuth: Axis{Dir: 1}, Elevation: Axis{Dir: 2}}
	if err := bad.Validate(); err == nil {
		t.Error("mount with dir 2 accepted")
	}
}
