package run

import (
	"fmt"

	"github.com/flarebyte/textsafety/internal/stage"
)

const (
	exitCodeExecErr  = 1
	exitCodeAPIError = 2
)

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

// evaluateRunExit maps a finished run to its exit status. API errors are
// absorbed into rows and only fail the run when failOnAPIError is set.
func evaluateRunExit(s stage.Summary, failOnAPIError bool) error {
	if !failOnAPIError || s.APIErrors == 0 {
		return nil
	}
	return runExitError{
		code: exitCodeAPIError,
		msg:  fmt.Sprintf("safety API errors: %d of %d rows", s.APIErrors, s.Rows),
	}
}
