package imapsync

import (
	"errors"
	"fmt"
)

// AuthError reports a failed login against a mailbox. It is kept
// distinct from transport errors so callers can stop retrying with
// the same credentials.
type AuthError struct {
	Mailbox string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed for %s: %s", e.Mailbox, e.Message)
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
