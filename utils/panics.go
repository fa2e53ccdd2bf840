package utils

import "fmt"

// RecoverWithError converts a panic in the deferring function into an error. Use as `defer RecoverWithError(&err)`.
func RecoverWithError(err *error) {
	if rv := recover(); rv != nil {
		if rErr, ok := rv.(error); ok {
			*err = fmt.Errorf("got panic: %w", rErr)
			return
		}
		*err = fmt.Errorf("got panic: %v", rv)
	}
}
