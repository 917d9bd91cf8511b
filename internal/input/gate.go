package input

import (
	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/logging"
)

// Permission is a platform answer to an orientation sensor request.
type Permission int

const (
	// PermissionNotRequired means the platform has no permission API and the
	// sensor can be used directly.
	PermissionNotRequired Permission = iota
	PermissionGranted
	PermissionDenied
	// PermissionUnsupported means there is no sensor at all.
	PermissionUnsupported
)

func (p Permission) String() string {
	switch p {
	case PermissionNotRequired:
		return "not-required"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	case PermissionUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Usable reports whether the sensor may be attached.
func (p Permission) Usable() bool {
	return p == PermissionNotRequired || p == PermissionGranted
}

// Err maps a refusal to its domain error.
func (p Permission) Err() error {
	switch p {
	case PermissionDenied:
		return field.ErrPermissionDenied
	case PermissionUnsupported:
		return field.ErrPermissionUnsupported
	default:
		return nil
	}
}

// Requester asks the platform for sensor access. done must be invoked
// later on the same loop that drives the renderer.
type Requester func(done func(Permission, error))

type GateState int

const (
	GateIdle GateState = iota
	GatePending
	GateGranted
	GateFailed
)

func (s GateState) String() string {
	return [...]string{"idle", "pending", "granted", "failed"}[s]
}

// Gate runs the orientation permission flow: one eager attempt, then a
// single retry on the first user gesture if access was not yet granted.
// onGrant fires at most once.
type Gate struct {
	request Requester
	onGrant func()

	state    GateState
	attempts int
	gestured bool
	closed   bool
	lastErr  error
}

func NewGate(req Requester, onGrant func()) *Gate {
	return &Gate{request: req, onGrant: onGrant}
}

// Attempt issues the eager request. Later calls do nothing.
func (g *Gate) Attempt() {
	if g.closed || g.attempts > 0 {
		return
	}
	g.issue()
}

// Gesture handles the first qualifying user gesture and reports whether
// a retry was issued. Every call after the first is ignored.
func (g *Gate) Gesture() bool {
	if g.closed || g.gestured {
		return false
	}
	g.gestured = true
	if g.state == GateGranted || g.attempts >= 2 {
		return false
	}
	g.issue()
	return true
}

// Close drops answers that arrive after teardown.
func (g *Gate) Close() { g.closed = true }

func (g *Gate) State() GateState { return g.state }
func (g *Gate) Attempts() int    { return g.attempts }
func (g *Gate) Gestured() bool   { return g.gestured }
func (g *Gate) Err() error       { return g.lastErr }

func (g *Gate) issue() {
	g.attempts++
	g.state = GatePending
	if g.request == nil {
		g.resolve(PermissionUnsupported, nil)
		return
	}
	g.request(g.resolve)
}

func (g *Gate) resolve(p Permission, err error) {
	if g.closed || g.state == GateGranted {
		return
	}
	if err == nil && p.Usable() {
		g.state = GateGranted
		g.lastErr = nil
		logging.L().Debug("orientation permission granted", "answer", p.String(), "attempt", g.attempts)
		if g.onGrant != nil {
			g.onGrant()
		}
		return
	}

	g.state = GateFailed
	if err == nil {
		err = p.Err()
	}
	g.lastErr = err
	logging.L().Debug("orientation permission not granted, using pointer and touch only", "attempt", g.attempts, "err", err)
}
