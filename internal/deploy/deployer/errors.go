package deployer

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound means no compiled artifact matches the descriptor.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrNetworkUnavailable means the endpoint could not be reached; nothing was sent.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrSubmission means the endpoint rejected the transaction or it reverted.
	ErrSubmission = errors.New("submission failed")
	// ErrConfirmationTimeout means the transaction was sent but no receipt was observed in time.
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

// StageError records the state a deployment attempt was in when it failed.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
