package service

import "errors"

var (
	ErrInternal          = errors.New("internal server error")
	ErrUnauthenticated   = errors.New("user is not authenticated")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrRemoteUnavailable = errors.New("service is temporarily unavailable")

	ErrScoreMustBeANumber              = errors.New("score must be a number")
	ErrHolesMustBeANumber              = errors.New("holes must be a number")
	ErrGreensInRegulationMustBeANumber = errors.New("greens in regulation must be a number")
	ErrHolesUnreasonable               = errors.New("holes must be a reasonable number")
	ErrGreensInRegulationUnreasonable  = errors.New("greens in regulation must be a reasonable number")
)
