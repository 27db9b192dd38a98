package stage

import "strings"

// sanitizeErrorMessage collapses a message onto one line for logs.
func sanitizeErrorMessage(msg string) string {
	s := strings.Join(strings.Fields(msg), " ")
	if s == "" {
		return "error"
	}
	return s
}
