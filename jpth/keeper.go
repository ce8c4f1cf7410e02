package jpth

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/w1xm/ptz_interface/internal/metrics"
	"github.com/w1xm/ptz_interface/rotator"
)

const (
	// proportionalScale converts degrees of error into jog units.
	proportionalScale = 1 / JogDegrees
	// jogLimit bounds a single actuation step to avoid overshoot.
	jogLimit = 8
	// minJog is the smallest force the head responds to; it ignores 0.
	minJog = 1

	// unhealthyAfter is the consecutive-failure count at which the
	// keeper reports the motor unhealthy.
	unhealthyAfter = 3
)

// jogFor returns a bounded jog force moving current towards target.
// TODO: be a real PID loop.
func jogFor(current, target float64) int {
	change := (target - current) * proportionalScale
	if change > jogLimit {
		change = jogLimit
	} else if change < -jogLimit {
		change = -jogLimit
	}
	if change != 0 && math.Abs(change) < minJog {
		// The minimum jog that does anything.
		if change > 0 {
			change = minJog
		} else {
			change = -minJog
		}
	}
	return int(change)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Keeper servos the head towards a target position. It owns the
// target/current record; the protocol frontends mutate the target only
// through its methods and it is the sole writer of the current
// position.
type Keeper struct {
	client         *Client
	period         time.Duration
	statusCallback rotator.StatusCallback

	mu       sync.Mutex
	target   Position
	current  Position
	moving   bool
	failures int
}

func NewKeeper(client *Client, period time.Duration, statusCallback rotator.StatusCallback) *Keeper {
	return &Keeper{
		client:         client,
		period:         period,
		statusCallback: statusCallback,
	}
}

// Run loops until ctx is canceled, pacing iterations with the
// configured minimum period. Motor failures abandon the iteration and
// the loop continues.
func (k *Keeper) Run(ctx context.Context) error {
	t := time.NewTicker(k.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		if err := k.step(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			k.recordFailure(err)
		}
	}
}

// step probes the head, computes per-axis jogs and drives them, then
// publishes the resulting position.
func (k *Keeper) step(ctx context.Context) error {
	start, err := k.client.Drive(ctx, 0, 0)
	if err != nil {
		return err
	}

	k.mu.Lock()
	target := k.target
	k.mu.Unlock()

	// Round everybody to a consistent precision so the comparison with
	// the target is stable.
	panJog := jogFor(round1(start.Pan), round1(target.Pan))
	tiltJog := jogFor(round1(start.Tilt), round1(target.Tilt))

	current, err := k.client.Drive(ctx, panJog, tiltJog)
	if err != nil {
		return err
	}
	metrics.KeeperIterations.Inc()

	k.mu.Lock()
	k.current = current
	k.moving = panJog != 0 || tiltJog != 0
	k.failures = 0
	status := k.statusLocked()
	k.mu.Unlock()
	metrics.MotorFailures.Set(0)
	k.notify(status)
	return nil
}

func (k *Keeper) recordFailure(err error) {
	k.mu.Lock()
	k.failures++
	failures := k.failures
	status := k.statusLocked()
	k.mu.Unlock()
	metrics.MotorFailures.Set(float64(failures))
	log.Printf("motor iteration failed (%d consecutive): %v", failures, err)
	k.notify(status)
}

func (k *Keeper) notify(status rotator.Status) {
	if k.statusCallback != nil {
		k.statusCallback(status)
	}
}

func (k *Keeper) statusLocked() rotator.Status {
	return rotator.Status{
		PanPos:     k.current.Pan,
		TiltPos:    k.current.Tilt,
		TargetPan:  k.target.Pan,
		TargetTilt: k.target.Tilt,
		Moving:     k.moving,
		Healthy:    k.failures < unhealthyAfter,
		Failures:   k.failures,
	}
}

// Status returns a snapshot of the keeper state.
func (k *Keeper) Status() rotator.Status {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.statusLocked()
}

func (k *Keeper) SetTargetPanTilt(pan, tilt float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.target = Position{Pan: pan, Tilt: tilt}
}

func (k *Keeper) PanTilt() (pan, tilt float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current.Pan, k.current.Tilt
}

// Stop freezes the head by declaring the current position the target.
func (k *Keeper) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.target = k.current
}

// Park sends the head to device-native (0, 0). This is deliberately
// not the az/el home; the parking location is a property of the mount.
func (k *Keeper) Park() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.target = Position{}
}

var _ rotator.Rotator = (*Keeper)(nil)
