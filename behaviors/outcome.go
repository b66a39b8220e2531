package behaviors

const (
	outcomeOK      = "ok"
	outcomeFailure = "failure"
	outcomeError   = "error"
)

// failable is implemented by result.Result and result.Value.
type failable interface {
	Failed() bool
}

func outcome(v any, err error) string {
	if err != nil {
		return outcomeError
	}

	if f, ok := v.(failable); ok && f.Failed() {
		return outcomeFailure
	}

	return outcomeOK
}
