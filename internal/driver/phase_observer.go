package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline pass has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// PhaseDone and PhaseFailed close a table; Name is "table".
	PhaseDone
	PhaseFailed
)

// PhaseEvent describes a pass boundary of one table.
type PhaseEvent struct {
	Table   string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events. With parallel tables it is called
// from several goroutines.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(table, name string, status PhaseStatus, elapsed time.Duration) {
	if o == nil {
		return
	}
	o(PhaseEvent{Table: table, Name: name, Status: status, Elapsed: elapsed})
}
