package harvest

// State is a step of the workflow.
type State int

const (
	StateNoSession State = iota
	StateTestingSession
	StateSessionValid
	StateSessionExpired
	StateFetchingData
	StateMerging
	StateDone
)

var stateNames = map[State]string{
	StateNoSession:      "NoSession",
	StateTestingSession: "TestingSession",
	StateSessionValid:   "SessionValid",
	StateSessionExpired: "SessionExpired",
	StateFetchingData:   "FetchingData",
	StateMerging:        "Merging",
	StateDone:           "Done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
