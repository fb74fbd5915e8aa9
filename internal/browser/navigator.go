package browser

import "sync"

// Navigator records the last location pushed during a request, mirroring a
// client-side router: later pushes replace earlier ones.
type Navigator struct {
	mu       sync.Mutex
	location string
}

func (n *Navigator) Push(location string) {
	n.mu.Lock()
	n.location = location
	n.mu.Unlock()
}

func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Pending reports whether a navigation was requested.
func (n *Navigator) Pending() bool {
	return n.Location() != ""
}
