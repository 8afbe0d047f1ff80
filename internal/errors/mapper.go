// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Map converts repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidInvite):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrAuthRequired):
		return status.Error(codes.Unauthenticated, err.Error())

	case errors.Is(err, ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// InvalidArgument creates a gRPC InvalidArgument error carrying a BadRequest
// detail for field.
func InvalidArgument(field, msg string) error {
	st := status.New(codes.InvalidArgument, fmt.Sprintf("%s: %s", field, msg))
	detailed, err := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: msg},
		},
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// Reasons carried in ErrorInfo details so clients can tell conflicts apart.
const (
	ErrorDomain           = "moviematch"
	ReasonInviteCodeTaken = "INVITE_CODE_TAKEN"
	ReasonEmailTaken      = "EMAIL_TAKEN"
)

// AlreadyExists creates a gRPC AlreadyExists error tagged with reason.
func AlreadyExists(msg, reason string) error {
	st := status.New(codes.AlreadyExists, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: ErrorDomain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// Reason returns the ErrorInfo reason of a status error, or "".
func Reason(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Reason
	}
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	return reasonOf(st)
}

func reasonOf(st *status.Status) string {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

// FieldViolations extracts the BadRequest field names from a status error.
func FieldViolations(err error) []string {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	var fields []string
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				fields = append(fields, v.GetField())
			}
		}
	}
	return fields
}
