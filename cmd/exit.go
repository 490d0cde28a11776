package cmd

import "fmt"

// ExitError ends the process with Code after main's deferred cleanup runs.
// When Err is nil the outcome was already printed and nothing more is logged.
type ExitError struct {
	Code int
	Msg  string
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitWith reports a verdict through the exit code alone.
func exitWith(code int) error {
	return &ExitError{Code: code}
}

// fatal reports err under msg and exits with code 1.
func fatal(msg string, err error) error {
	return &ExitError{Code: 1, Msg: msg, Err: err}
}
