package posapi

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusServed     Status = "served"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
)

// The backend is the authority on transitions; this map only gates which
// actions the terminal offers (e.g. cancel is never offered once terminal).
var validNext = map[Status]map[Status]bool{
	StatusOpen:       {StatusInProgress: true, StatusServed: true, StatusCancelled: true},
	StatusInProgress: {StatusServed: true, StatusPaid: true, StatusCancelled: true},
	StatusServed:     {StatusPaid: true, StatusCancelled: true},
	StatusPaid:       {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether no further mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}
