package enum

type RunState string

const (
	RunIdle        RunState = "idle"
	RunRunning     RunState = "running"
	RunRestoring   RunState = "restoring"
	RunDone        RunState = "done"
	RunHaltedByCap RunState = "halted_by_cap"
)

func (s RunState) String() string {
	return string(s)
}

// Terminal reports whether no further transition is allowed from s.
func (s RunState) Terminal() bool {
	return s == RunDone || s == RunHaltedByCap
}

type EventCategory string

const (
	EventStart           EventCategory = "start"
	EventProcessingQuery EventCategory = "processing-query"
	EventPageProgress    EventCategory = "page-progress"
	EventQueryComplete   EventCategory = "query-complete"
	EventSafetyHalt      EventCategory = "safety-halt"
	EventRestoreStart    EventCategory = "restore-start"
	EventRestoreComplete EventCategory = "restore-complete"
	EventNothingFound    EventCategory = "nothing-found"
	EventDone            EventCategory = "done"
	EventError           EventCategory = "error"
)

func (c EventCategory) String() string {
	return string(c)
}
