package pipeline

// State is a phase of a pipeline run.
//
//	INIT -> SHARDING -> RUNNING -> DRAINING -> MERGING -> DONE
//
// CANCELLED is reachable from RUNNING and DRAINING; FAILED from any phase
// once a fatal error is observed.
type State int

const (
	StateInit State = iota
	StateSharding
	StateRunning
	StateDraining
	StateMerging
	StateDone
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	StateInit:      "INIT",
	StateSharding:  "SHARDING",
	StateRunning:   "RUNNING",
	StateDraining:  "DRAINING",
	StateMerging:   "MERGING",
	StateDone:      "DONE",
	StateCancelled: "CANCELLED",
	StateFailed:    "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}
