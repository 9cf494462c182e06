package reactor

import "sync"

// defaultMonitor backs the package-level free functions spec.md describes:
// "A default per-thread monitor is exposed via free functions." Go has no
// per-thread storage, so this is process-wide; callers that need isolated
// monitors should construct their own via New.
var (
	defaultOnce sync.Once
	defaultMon  *Monitor
	defaultErr  error
)

func defaultMonitor() (*Monitor, error) {
	defaultOnce.Do(func() {
		defaultMon, defaultErr = New()
	})
	return defaultMon, defaultErr
}

// Default returns the process-wide default Monitor, creating it on first
// use.
func Default() (*Monitor, error) {
	return defaultMonitor()
}

// Manage registers provider on the default monitor.
func Manage(provider Provider, events ...uint32) error {
	m, err := defaultMonitor()
	if err != nil {
		return err
	}
	return m.Manage(provider, events...)
}

// ChangeFD transfers identity on the default monitor.
func ChangeFD(oldFd, newFd int, events uint32) error {
	m, err := defaultMonitor()
	if err != nil {
		return err
	}
	return m.ChangeFD(oldFd, newFd, events)
}

// Find looks up a keyed provider on the default monitor.
func Find(key string) (Provider, bool) {
	m, err := defaultMonitor()
	if err != nil {
		return nil, false
	}
	return m.Find(key)
}

// Forever runs the default monitor's loop indefinitely.
func Forever() error {
	m, err := defaultMonitor()
	if err != nil {
		return err
	}
	return m.Forever()
}
