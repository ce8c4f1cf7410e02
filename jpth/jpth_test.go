package jpth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const wellFormed = `<?xml version="1.0" encoding="utf-8"?>
<CP_Update>
<PanPos>85.4</PanPos>
<TiltPos>-57.0</TiltPos>
<AutoPatrol>Off</AutoPatrol>
<CPStatusMsg><Type>Info</Type><Text></Text></CPStatusMsg>
</CP_Update>`

func TestParseUpdate(t *testing.T) {
	for _, test := range []struct {
		name    string
		body    string
		want    Position
		wantErr bool
	}{
		{
			name: "well formed",
			body: wellFormed,
			want: Position{Pan: 85.4, Tilt: -57.0},
		},
		{
			name: "truncated status",
			body: `<?xml version="1.0" encoding="utf-8"?>
<CP_Update>
<PanPos>85.4</PanPos>
<TiltPos>-57.0</TiltPos>
<AutoPatrol>Off</AutoPatrol>
<CPStatusMsg><Type>In</CP_Update>`,
			want: Position{Pan: 85.4, Tilt: -57.0},
		},
		{
			name: "duplicated tail",
			body: `<CP_Update>
<PanPos>1.0</PanPos>
<TiltPos>2.0</TiltPos>
<AutoPatrol>Off</AutoPatrol>
<CPStatusMsg><CPStatusMsg><Type>Info</Type></CPStatusMsg>
</CP_Update>
</CP_Update>`,
			want: Position{Pan: 1.0, Tilt: 2.0},
		},
		{
			name:    "garbage before marker",
			body:    `<CP_Update><PanPos>1.0</PanPos`,
			wantErr: true,
		},
		{
			name:    "missing tilt",
			body:    `<CP_Update><PanPos>1.0</PanPos><AutoPatrol>Off</AutoPatrol></CP_Update>`,
			wantErr: true,
		},
		{
			name:    "missing both positions",
			body:    `<CP_Update><AutoPatrol>Off</AutoPatrol></CP_Update>`,
			wantErr: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			pos, err := parseUpdate([]byte(test.body))
			if test.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("parseUpdate: got err %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseUpdate: %v", err)
			}
			if diff := cmp.Diff(pos, test.want); diff != "" {
				t.Errorf("unexpected position: got(-)/want(+):\n%s", diff)
			}
		})
	}
}

// A corrupted document sharing the same content up to </AutoPatrol>
// must repair to the same positions as the reference document.
func TestRepairMatchesReference(t *testing.T) {
	ref, err := parseUpdate([]byte(wellFormed))
	if err != nil {
		t.Fatalf("parsing reference: %v", err)
	}
	corrupted := wellFormed[:len(wellFormed)-len("<CPStatusMsg><Type>Info</Type><Text></Text></CPStatusMsg>\n</CP_Update>")] + "<CPStatusMsg><Type"
	got, err := parseUpdate([]byte(corrupted))
	if err != nil {
		t.Fatalf("parsing corrupted: %v", err)
	}
	if diff := cmp.Diff(got, ref); diff != "" {
		t.Errorf("repaired parse differs from reference: got(-)/want(+):\n%s", diff)
	}
}

func TestDriveClamps(t *testing.T) {
	var gotPan, gotTilt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPan = r.URL.Query().Get("PCmd")
		gotTilt = r.URL.Query().Get("TCmd")
		fmt.Fprint(w, wellFormed)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	for _, test := range []struct {
		pan, tilt         int
		wantPan, wantTilt string
	}{
		{0, 0, "0", "0"},
		{100, -100, "31", "-31"},
		{31, -31, "31", "-31"},
		{-5, 7, "-5", "7"},
	} {
		pos, err := c.Drive(context.Background(), test.pan, test.tilt)
		if err != nil {
			t.Fatalf("Drive(%d, %d): %v", test.pan, test.tilt, err)
		}
		if gotPan != test.wantPan || gotTilt != test.wantTilt {
			t.Errorf("Drive(%d, %d): sent PCmd=%s TCmd=%s, want %s/%s", test.pan, test.tilt, gotPan, gotTilt, test.wantPan, test.wantTilt)
		}
		if diff := cmp.Diff(pos, Position{Pan: 85.4, Tilt: -57.0}, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("unexpected position: got(-)/want(+):\n%s", diff)
		}
	}
}

func TestDriveSimulator(t *testing.T) {
	sim := NewSimulator()
	srv := httptest.NewServer(sim)
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	pos, err := c.Drive(context.Background(), 10, -4)
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	want := Position{Pan: 10 * JogDegrees, Tilt: -4 * JogDegrees}
	if diff := cmp.Diff(pos, want, cmpopts.EquateApprox(0, 0.01)); diff != "" {
		t.Errorf("unexpected position: got(-)/want(+):\n%s", diff)
	}

	sim.SetCorrupt(true)
	pos, err = c.Drive(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Drive with corrupt tail: %v", err)
	}
	if diff := cmp.Diff(pos, want, cmpopts.EquateApprox(0, 0.01)); diff != "" {
		t.Errorf("unexpected position after corrupt response: got(-)/want(+):\n%s", diff)
	}
}

func TestDriveNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, 100*time.Millisecond)
	if _, err := c.Drive(context.Background(), 0, 0); err == nil {
		t.Error("Drive against closed server succeeded")
	} else if errors.Is(err, ErrMalformed) {
		t.Errorf("network failure classified as malformed: %v", err)
	}
}

func TestDriveBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)
	if _, err := c.Drive(context.Background(), 0, 0); err == nil {
		t.Error("Drive against 404 succeeded")
	}
}
