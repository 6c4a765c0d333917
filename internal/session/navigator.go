package session

import "sync"

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// Location tracks the view the user is on.
type Location struct {
	mu      sync.RWMutex
	current string
}

// NewLocation starts at path.
func NewLocation(path string) *Location {
	return &Location{current: path}
}

func (l *Location) Navigate(path string) {
	l.mu.Lock()
	l.current = path
	l.mu.Unlock()
}

// Current returns the last path navigated to.
func (l *Location) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}
