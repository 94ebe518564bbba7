// Package status provides a thread-safe status tracker for the button-panel daemon.
// The scan loop writes to it; HTTP handlers read from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip     string
	Pins     []int
	Serial   string
	Baud     int
	PauseMs  int64
	PollMs   int64
	Broker   string
	HTTPAddr string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Levels        [logic.NumButtons]logic.Level
	Counts        logic.PressCounts
	LastPress     *logic.Press
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	t := &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
	for i := range t.snap.Levels {
		t.snap.Levels[i] = logic.High
	}
	return t
}

// Update copies line levels, press counts and the last press from the dispatcher.
func (t *Tracker) Update(d *logic.Dispatcher) {
	levels, counts, last := d.Levels(), d.Counts(), d.LastPress()
	t.mu.Lock()
	t.snap.Levels = levels
	t.snap.Counts = counts
	t.snap.LastPress = last
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered sets the number of messages waiting for the broker.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.LastPress != nil {
		p := *s.LastPress
		s.LastPress = &p
	}
	s.Config.Pins = append([]int(nil), s.Config.Pins...)
	s.Now = t.now()
	return s
}
