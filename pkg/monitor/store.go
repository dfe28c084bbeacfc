package monitor

import (
	"fmt"
	"sync"
	"time"

	"zebraprint/pkg/browserprint"
)

// Snapshot is the latest known state of the selected printer.
type Snapshot struct {
	Printer             browserprint.Device
	Connection          browserprint.ConnectionResult
	Status              browserprint.StatusResult
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the printer has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Ready reports whether the printer answered and has no error conditions.
func (s Snapshot) Ready() bool {
	return s.Connection.IsConnected && s.HasStatus && s.LastError == nil && s.Status.IsReadyToPrint
}

// Store coordinates concurrent access to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records one poll. When err is non-nil the previous status is kept
// but the error is recorded and the failure counter grows.
func (s *Store) Update(printer browserprint.Device, conn browserprint.ConnectionResult, status *browserprint.StatusResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Printer = printer
	s.snapshot.Connection = conn
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		s.snapshot.Status = browserprint.StatusResult{
			IsReadyToPrint: status.IsReadyToPrint,
			Errors:         cloneStrings(status.Errors),
		}
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.HasStatus = false
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Status.Errors = cloneStrings(s.snapshot.Status.Errors)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
