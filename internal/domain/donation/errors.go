package donation

import "errors"

// ErrAlreadyRecorded marks a duplicate (transaction id, status) ledger entry.
var ErrAlreadyRecorded = errors.New("transition already recorded")
