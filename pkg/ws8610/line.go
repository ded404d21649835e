package ws8610

import "sync"

// Line implements Interrupt for sources signaling edges from a goroutine.
// Detach returns only after a running handler returned, so a detached
// receiver has no active producer.
type Line struct {
	lock    sync.Mutex
	handler func()
}

// Attach implements Interrupt.
func (l *Line) Attach(handler func()) error {
	l.lock.Lock()
	l.handler = handler
	l.lock.Unlock()
	return nil
}

// Detach implements Interrupt.
func (l *Line) Detach() error {
	l.lock.Lock()
	l.handler = nil
	l.lock.Unlock()
	return nil
}

// Attached indicates a handler is attached.
func (l *Line) Attached() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.handler != nil
}

// Fire calls the attached handler, if any.
func (l *Line) Fire() {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.handler != nil {
		l.handler()
	}
}
