package order

// Status is the submission lifecycle state of an order attempt.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusValidating Status = "VALIDATING"
	StatusSubmitted  Status = "SUBMITTED"
	StatusRejected   Status = "REJECTED"
)

// validNext encodes Draft → Validating → {Submitted | Rejected}. Submitted
// is terminal for this core; Rejected is terminal per attempt only, the
// draft itself stays in DRAFT and can be resubmitted.
var validNext = map[Status]map[Status]bool{
	StatusDraft:      {StatusValidating: true},
	StatusValidating: {StatusSubmitted: true, StatusRejected: true},
	StatusSubmitted:  {},
	StatusRejected:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
