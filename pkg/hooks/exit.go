package hooks

// Exit codes understood by the host
const (
	ExitSuccess = 0
	ExitWarning = 1
	ExitBlock   = 2
)

// ExitCode validates a custom non-blocking error code. 0 and 2 carry
// protocol meaning and are rejected, as is anything outside 1..255.
func ExitCode(code int) (int, error) {
	if code == ExitSuccess || code == ExitBlock || code < 1 || code > 255 {
		return 0, &InvalidExitCodeError{Code: code}
	}
	return code, nil
}
