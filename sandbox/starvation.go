package sandbox

import "log/slog"

// StarvationMessage is shown while the starvation warning is up.
const StarvationMessage = "There are too many particles! \nDecrease the emission rate!"

// WarningDuration is how long a starvation keeps the warning up, in seconds.
const WarningDuration = 1

// StarvationMonitor counts starvation reports and keeps a warning timer.
type StarvationMonitor struct {
	Total  int
	Events int
	Timer  float32
}

// NotifyStarvation implements emission.StarvationNotifier.
func (m *StarvationMonitor) NotifyStarvation(remaining int) {
	m.Total += remaining
	m.Events++
	m.Timer = WarningDuration
	slog.Debug("starvation", "remaining", remaining)
}

// Tick counts the warning down.
func (m *StarvationMonitor) Tick(dt float32) {
	if m.Timer > 0 {
		m.Timer -= dt
		if m.Timer < 0 {
			m.Timer = 0
		}
	}
}

// Warning reports whether the warning should be shown.
func (m *StarvationMonitor) Warning() bool {
	return m.Timer > 0
}
