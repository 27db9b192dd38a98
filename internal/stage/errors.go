package stage

import "errors"

// ErrDrained is returned when a record is offered after the end of stream.
var ErrDrained = errors.New("stage drained: no more records accepted")
