package errors

import "github.com/pkg/errors"

// Error taxonomy for cleanup runs. Auth and session errors abort a run;
// remote-call errors are recovered at page/query granularity.
var (
	// auth errors - fatal to the whole run
	ErrMissingCredential = errors.New("no credential stored for session")
	ErrInvalidCredential = errors.New("credential is expired or invalid")

	// session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrRunInProgress   = errors.New("a cleanup run is already in progress for this session")

	// remote errors - recoverable at page/query granularity
	ErrRemoteCall = errors.New("remote mailbox call failed")
)

// IsFatal reports whether err must abort an entire run rather than be
// skipped at page granularity.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrSessionNotFound)
}
