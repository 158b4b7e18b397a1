package apperrors

import (
	"fmt"
)

const (
	ErrNotFound     = "NOT_FOUND"
	ErrValidation   = "VALIDATION_FAILURE"
	ErrConsistency  = "CONSISTENCY_FAILURE"
	ErrTransient    = "TRANSIENT"
	ErrAuth         = "UNAUTHORIZED"
	ErrAccessDenied = "ACCESS_DENIED"
	ErrConflict     = "CONFLICT"
	ErrInternal     = "INTERNAL"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

// CodeOf walks err looking for an ErrorResponse and returns its code,
// or ErrInternal when none is found.
func CodeOf(err error) string {
	for err != nil {
		if appErr, ok := err.(ErrorResponse); ok {
			return appErr.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return ErrInternal
}
