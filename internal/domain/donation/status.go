package donation

// Kind distinguishes one-off donations from pledges with a reward leg.
type Kind string

const (
	KindDonation Kind = "donation"
	KindPledge   Kind = "pledge"
)

func (k Kind) IsValid() bool {
	return k == KindDonation || k == KindPledge
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusBacked    Status = "backed"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
	StatusTrashed   Status = "trashed"
)

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports business finality. Completed is terminal even though it
// still admits a refund.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded, StatusTrashed:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// transitions lists the allowed moves; trashed is reachable from every
// non-trashed state and is handled in CanTransition.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusFailed, StatusCancelled, StatusBacked},
	StatusBacked:    {StatusCompleted},
	StatusCompleted: {StatusRefunded},
	StatusFailed:    nil,
	StatusCancelled: nil,
	StatusRefunded:  nil,
	StatusTrashed:   nil,
}

// CanTransition reports whether an entity of kind may move from one status
// to another. Backed is only reachable by pledges.
func CanTransition(kind Kind, from, to Status) bool {
	if from == to {
		return false
	}
	if to == StatusTrashed {
		return from != StatusTrashed && from.IsValid()
	}
	if to == StatusBacked && kind != KindPledge {
		return false
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
