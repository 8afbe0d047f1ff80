package errors

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error kinds surfaced to callers of the swipe client and produced by the
// repositories. Compare with errors.Is.
var (
	// ErrRemoteUnavailable covers network and backend failures of any gateway call.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrConflictIgnored marks an expected uniqueness conflict that is logged and dropped.
	ErrConflictIgnored = errors.New("conflict ignored")
	// ErrInvalidInvite is returned for unknown, full or self-referential invite codes.
	ErrInvalidInvite = errors.New("invalid invite")
	// ErrAuthRequired is returned when an operation needs a signed-in user.
	ErrAuthRequired = errors.New("authentication required")

	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// InvalidInvite wraps ErrInvalidInvite with a user facing reason.
func InvalidInvite(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInvite, reason)
}

// RemoteError is a gRPC failure translated into the error taxonomy. It keeps
// the server message for display while unwrapping to a sentinel.
type RemoteError struct {
	Code   codes.Code
	Msg    string
	Reason string
	kind   error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Msg == "":
		return e.kind.Error()
	case strings.HasPrefix(e.Msg, e.kind.Error()):
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Msg)
}

func (e *RemoteError) Unwrap() error { return e.kind }

// FromStatus is the client side inverse of Map.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	var kind error
	switch st.Code() {
	case codes.Unauthenticated:
		kind = ErrAuthRequired
	case codes.FailedPrecondition:
		kind = ErrInvalidInvite
	case codes.PermissionDenied:
		kind = ErrPermissionDenied
	case codes.NotFound:
		kind = ErrNotFound
	case codes.AlreadyExists:
		kind = ErrAlreadyExists
	case codes.InvalidArgument:
		kind = ErrInvalidArgument
	default:
		// Unavailable, DeadlineExceeded, Internal, Unknown, ResourceExhausted...
		kind = ErrRemoteUnavailable
	}
	return &RemoteError{Code: st.Code(), Msg: st.Message(), Reason: reasonOf(st), kind: kind}
}
