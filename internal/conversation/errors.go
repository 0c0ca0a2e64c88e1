package conversation

import (
	"errors"
	"fmt"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

var (
	// ErrNotAuthenticated is returned when no user is signed in.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when the referenced conversation does not exist
	// for the signed-in user.
	ErrNotFound = errors.New("conversation not found")
	// ErrNoActiveConversation is returned by AppendMessage when nothing is selected.
	ErrNoActiveConversation = errors.New("no active conversation")
	// ErrInvalidArgument covers blank titles, blank content and unknown roles.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRemoteFailure matches every *RemoteError.
	ErrRemoteFailure = errors.New("remote store failure")
)

// RemoteError wraps an adapter failure and keeps its reason.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrRemoteFailure, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteFailure }

// IsRemoteFailure reports whether err came from the remote store.
func IsRemoteFailure(err error) bool { return errors.Is(err, ErrRemoteFailure) }

func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &RemoteError{Op: op, Err: err}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
