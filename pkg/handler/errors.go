// Package handler exposes the command service over REST and gRPC.
package handler

import (
	"errors"
	"net/http"

	"github.com/MattchuPichuu/WarDaddy/pkg/command"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// httpStatus maps a command error onto an HTTP status code.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, command.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrParseFailure), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDeliveryFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// grpcCode maps a command error onto a gRPC status code.
func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, command.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, service.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, service.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, service.ErrParseFailure), errors.Is(err, service.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, service.ErrDeliveryFailure):
		return codes.Unavailable
	}
	return codes.Internal
}

func grpcError(err error) error {
	return status.Error(grpcCode(err), userMessage(err))
}

// userMessage is the sentence shown to a client. Unauthenticated is not a
// service error so it gets its own wording.
func userMessage(err error) string {
	if errors.Is(err, command.ErrUnauthenticated) {
		return "🔒 Please log in first."
	}
	return service.UserMessage(err)
}
