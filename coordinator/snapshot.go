// SPDX-License-Identifier: EPL-2.0

package coordinator

import "sync"

// Snapshot is a consistent view of the playback state for observers.
type Snapshot struct {
	// Buffer is the installed play buffer. It is shared, not copied, and
	// must be treated as read only.
	Buffer      []float32
	Cursor      int
	IsRecording bool

	// Generation increases every time the play buffer is replaced or
	// cleared.
	Generation uint64
	// Err is the last control-plane failure, reset by the next buffer
	// install.
	Err error
}

type snapshotStore struct {
	mu   sync.Mutex
	snap Snapshot
}

func (s *snapshotStore) load() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snap
}

func (s *snapshotStore) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snap)
}
