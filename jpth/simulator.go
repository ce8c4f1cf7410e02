package jpth

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
)

// Simulator behaves like a JPTH-13M-PoE head: it clamps jog forces,
// integrates them at JogDegrees per unit, and serves CP_Update.xml.
// With Corrupt set it garbles the document tail after </AutoPatrol>
// the way the real head does under fast polling.
type Simulator struct {
	mu        sync.Mutex
	pan, tilt float64
	corrupt   bool
	requests  int
	maxPan    int
	maxTilt   int
}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// SetCorrupt makes subsequent responses malformed after </AutoPatrol>.
func (s *Simulator) SetCorrupt(corrupt bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt = corrupt
}

// Position returns the simulated head position.
func (s *Simulator) Position() (pan, tilt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pan, s.tilt
}

// Requests returns the number of commands served.
func (s *Simulator) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// MaxForces returns the largest absolute forces seen on each axis.
func (s *Simulator) MaxForces() (pan, tilt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPan, s.maxTilt
}

func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/CP_Update.xml" {
		http.NotFound(w, r)
		return
	}
	panForce, _ := strconv.Atoi(r.URL.Query().Get("PCmd"))
	tiltForce, _ := strconv.Atoi(r.URL.Query().Get("TCmd"))
	panForce = clampForce(panForce)
	tiltForce = clampForce(tiltForce)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if abs(panForce) > s.maxPan {
		s.maxPan = abs(panForce)
	}
	if abs(tiltForce) > s.maxTilt {
		s.maxTilt = abs(tiltForce)
	}
	s.pan += float64(panForce) * JogDegrees
	s.tilt += float64(tiltForce) * JogDegrees

	tail := "<CPStatusMsg><Type>Info</Type><Text></Text></CPStatusMsg></CP_Update>"
	if s.corrupt {
		// A torn status line, as seen in the wild.
		tail = "<CPStatusMsg><Type>In</CP_Update>"
	}
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?>
<CP_Update>
<PanPos>%.2f</PanPos>
<TiltPos>%.2f</TiltPos>
<AutoPatrol>Off</AutoPatrol>
%s`, s.pan, s.tilt, tail)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
