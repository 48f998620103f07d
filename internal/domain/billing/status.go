package billing

// Status is the provider-reported state of a payment. Values outside the
// constants below are stored verbatim.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInProcess Status = "in_process"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further provider-driven progress is expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsKnown reports whether s belongs to the core vocabulary.
func (s Status) IsKnown() bool {
	switch s {
	case StatusPending, StatusInProcess:
		return true
	}
	return s.IsTerminal()
}

// CanTransition refuses any move out of a terminal status into another core
// status, so a late notification for an older attempt cannot overwrite the
// settled outcome. Statuses outside the core vocabulary (refunded,
// charged_back) are always accepted.
func CanTransition(from, to Status) bool {
	if !from.IsTerminal() {
		return true
	}
	return !to.IsKnown()
}
