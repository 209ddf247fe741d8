package observer

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

func outcome(ok bool, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case ok:
		return OutcomeSuccess
	default:
		return OutcomeFailed
	}
}
