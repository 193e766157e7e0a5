package handler

import (
	"errors"
	"net/http"

	"github.com/TeeMe/round-service/internal/dto"
	"github.com/TeeMe/round-service/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	errNotAuthorized          = errors.New("user is not authorized")
	errInvalidRoundID         = errors.New("invalid round ID")
	errLimitAndOffsetMustBeInt = errors.New("limit and offset must be int")
)

var validationErrors = []error{
	service.ErrScoreMustBeANumber,
	service.ErrHolesMustBeANumber,
	service.ErrGreensInRegulationMustBeANumber,
	service.ErrHolesUnreasonable,
	service.ErrGreensInRegulationUnreasonable,
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	}

	for _, validationErr := range validationErrors {
		if errors.Is(err, validationErr) {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), dto.NewBasicResponse(false, err.Error()))
}
