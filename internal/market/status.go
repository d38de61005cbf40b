package market

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {StatusCancelled: true},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Known reports whether s is one of the lifecycle statuses the ledger acts
// on. Unknown statuses are persisted as-is with no ledger side effects.
func Known(s Status) bool {
	_, ok := validNext[s]
	return ok
}
