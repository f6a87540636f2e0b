package collab

import "sync"

// Monitor exposes a normalized status and presence list for an optional
// provider.
//
// Without a provider the status is always disconnected and nobody is
// present. With one, the status starts at connecting and moves to
// connected on the provider's connected status or synced signal. The
// monitor never leaves connected; reconnects are the provider's concern.
type Monitor struct {
	provider Provider

	mu     sync.Mutex
	status Status
	users  []User
	unsubs []func()
}

// NewMonitor creates a monitor for provider, which may be nil.
func NewMonitor(provider Provider) *Monitor {
	m := &Monitor{status: StatusDisconnected, users: []User{}}
	if provider == nil {
		return m
	}

	m.provider = provider
	m.status = StatusConnecting
	if provider.Synced() {
		m.status = StatusConnected
	}
	m.users = dedupe(provider.Users())

	m.unsubs = []func(){
		provider.OnStatus(func(s Status) {
			if s == StatusConnected {
				m.connect()
			}
		}),
		provider.OnSynced(m.connect),
		provider.OnAwareness(m.refresh),
	}

	// Signals sent before the subscriptions above were missed.
	if provider.Synced() {
		m.connect()
	}
	m.refresh()
	return m
}

// Status returns the current collaboration status.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Users returns the collaborators present, de-duplicated by client ID.
func (m *Monitor) Users() []User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, len(m.users))
	copy(out, m.users)
	return out
}

// Close unsubscribes from the provider.
func (m *Monitor) Close() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
}

func (m *Monitor) connect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = StatusConnected
}

func (m *Monitor) refresh() {
	users := dedupe(m.provider.Users())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users
}
