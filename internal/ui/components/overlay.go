package components

// OverlayManager is the process-wide registry of transient suggestion lists.
// At most one owner holds the overlay at any time; opening it for a new
// owner displaces the previous one. All calls happen on the UI goroutine, so
// no locking.
type OverlayManager struct {
	owner string
}

// NewOverlayManager creates an empty registry.
func NewOverlayManager() *OverlayManager {
	return &OverlayManager{}
}

// Open claims the overlay for owner, closing anyone else's.
func (m *OverlayManager) Open(owner string) {
	m.owner = owner
}

// IsOpen reports whether owner currently holds the overlay.
func (m *OverlayManager) IsOpen(owner string) bool {
	return owner != "" && m.owner == owner
}

// Owner returns the id holding the overlay, or "" when none is open.
func (m *OverlayManager) Owner() string {
	return m.owner
}

// Close releases the overlay if owner holds it.
func (m *OverlayManager) Close(owner string) {
	if m.owner == owner {
		m.owner = ""
	}
}

// CloseAll dismisses whatever overlay is open. Hosts call this on any
// pointer press outside an input and on every view or focus switch.
func (m *OverlayManager) CloseAll() {
	m.owner = ""
}
