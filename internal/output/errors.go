package output

// Exit codes shared by every command. Scripts branch on these, so values are
// stable.
const (
	ExitOK           = 0
	ExitGeneral      = 1  // unclassified failure
	ExitUsage        = 2  // bad arguments or flag combination
	ExitAuth         = 3  // authentication failure
	ExitNotFound     = 4  // resource does not exist
	ExitConflict     = 5  // resource already exists
	ExitForbidden    = 6  // permission denied
	ExitTimeout      = 8  // request timed out
	ExitServerError  = 9  // Exchange rejected the operation
	ExitConfigError  = 10 // configuration problem
	ExitNetworkError = 11 // connectivity failure
	ExitRateLimit    = 75 // throttled (EX_TEMPFAIL)
)

// CLIError carries a user-facing message, the process exit code, and an
// optional remediation hint printed below the error.
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
}

func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError builds a CLIError without a hint.
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{ExitCode: code, Message: msg}
}

// WithHint attaches a remediation hint and returns the same error for
// chaining.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}
