package devices

import (
	"fmt"
	"sync"
	"time"
)

// PumpMode is the operating mode of the water pump.
type PumpMode string

const (
	ModeAuto PumpMode = "auto"
	ModeOn   PumpMode = "on"
	ModeOff  PumpMode = "off"
)

// Water level drift, percent per minute.
const (
	fillRatePerMinute  = 1.5
	drainRatePerMinute = 0.25
)

// Auto-mode hysteresis: start below the low mark, stop at the high mark.
const (
	autoStartBelowLevel = 30.0
	autoStopAtLevel     = 90.0
)

// PumpState is a point-in-time snapshot of the pump.
type PumpState struct {
	Mode       PumpMode `json:"mode"`
	Running    bool     `json:"running"`
	WaterLevel float64  `json:"water_level"` // 0-100 %
}

// Pump is a small finite-state machine: the mode is set by the user, the
// running flag and water level follow from mode and elapsed time.
type Pump struct {
	mu        sync.Mutex
	mode      PumpMode
	running   bool
	level     float64
	updatedAt time.Time
	now       func() time.Time
}

// NewPump returns a pump in auto mode at the given water level.
func NewPump(initialLevel float64) *Pump {
	p := &Pump{
		mode:  ModeAuto,
		level: clampLevel(initialLevel),
		now:   time.Now,
	}
	p.updatedAt = p.now()
	p.running = p.level < autoStartBelowLevel
	return p
}

// SetMode switches the pump's operating mode.
func (p *Pump) SetMode(mode PumpMode) error {
	switch mode {
	case ModeAuto, ModeOn, ModeOff:
	default:
		return fmt.Errorf("unknown pump mode %q", mode)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	p.mode = mode
	p.applyMode()
	return nil
}

// State advances the simulation to now and returns the snapshot.
func (p *Pump) State() PumpState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	return PumpState{Mode: p.mode, Running: p.running, WaterLevel: p.level}
}

// advance applies the level drift for the elapsed time and re-evaluates the
// mode. Must be called with the lock held.
func (p *Pump) advance() {
	now := p.now()
	elapsed := now.Sub(p.updatedAt)
	p.updatedAt = now
	p.level = DriftLevel(p.level, p.running, elapsed)
	p.applyMode()
}

func (p *Pump) applyMode() {
	switch p.mode {
	case ModeOn:
		p.running = true
	case ModeOff:
		p.running = false
	case ModeAuto:
		// Hysteresis: keep the current state between the two marks.
		if p.level < autoStartBelowLevel {
			p.running = true
		} else if p.level >= autoStopAtLevel {
			p.running = false
		}
	}
}

// DriftLevel is the pure level-transition function: a running pump fills the
// tank, an idle one drains it through consumption.
func DriftLevel(level float64, running bool, elapsed time.Duration) float64 {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return clampLevel(level)
	}
	if running {
		return clampLevel(level + fillRatePerMinute*minutes)
	}
	return clampLevel(level - drainRatePerMinute*minutes)
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// Registry is a named on/off flag store for household devices.
type Registry struct {
	mu     sync.Mutex
	states map[string]bool
}

// NewRegistry creates a registry with every named device switched off.
func NewRegistry(names ...string) *Registry {
	states := make(map[string]bool, len(names))
	for _, name := range names {
		states[name] = false
	}
	return &Registry{states: states}
}

// Toggle flips a device and returns its new state.
func (r *Registry) Toggle(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.states[name]
	if !ok {
		return false, fmt.Errorf("unknown device %q", name)
	}
	r.states[name] = !current
	return !current, nil
}

// SetState switches a device explicitly.
func (r *Registry) SetState(name string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[name]; !ok {
		return fmt.Errorf("unknown device %q", name)
	}
	r.states[name] = on
	return nil
}

// States returns a copy of all device states.
func (r *Registry) States() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.states))
	for name, on := range r.states {
		out[name] = on
	}
	return out
}
