package assistant

import "sync"

// patientLocks serializes schedule mutations per patient. Different patients
// proceed in parallel; two messages from the same patient apply one at a time
// so completion marking and creation cannot interleave.
type patientLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPatientLocks() *patientLocks {
	return &patientLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *patientLocks) lock(patientID string) func() {
	p.mu.Lock()
	l, ok := p.locks[patientID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[patientID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
