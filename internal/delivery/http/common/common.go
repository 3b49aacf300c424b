package http_common

import (
	"errors"
	"net/http"

	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// StatusFor maps a usecase error to its HTTP status and user-facing message.
func StatusFor(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, usecase_room.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Message: "not found"}
	case errors.Is(err, usecase_room.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Message: "forbidden"}
	case errors.Is(err, usecase_room.ErrRoomFull):
		return http.StatusConflict, ErrorResponse{Message: "room is full"}
	case errors.Is(err, usecase_room.ErrConflict):
		return http.StatusConflict, ErrorResponse{Message: "conflict"}
	case errors.Is(err, usecase_room.ErrPrecondition):
		return http.StatusBadRequest, ErrorResponse{Message: "precondition failed"}
	case errors.Is(err, usecase_room.ErrInvalidCapacity):
		return http.StatusBadRequest, ErrorResponse{Message: "invalid capacity"}
	case errors.Is(err, usecase_room.ErrUnknownMode):
		return http.StatusBadRequest, ErrorResponse{Message: "unknown game mode"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: "internal error"}
	}
}
