package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
	"github.com/Nixie-Tech-LLC/billboard/internal/storage"
)

// FromError maps a domain error to its HTTP status. Unknown errors are logged
// and reported as 500 with the fallback message, so internals never leak.
func FromError(err error, fallback string) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, schedule.ErrInvalidRange):
		return &APIError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, schedule.ErrSlotTaken),
		errors.Is(err, schedule.ErrTimezoneLocked),
		errors.Is(err, schedule.ErrInUse),
		errors.Is(err, schedule.ErrDuplicate):
		return &APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, schedule.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, schedule.ErrForbidden):
		return &APIError{Code: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, storage.ErrUnsupportedMedia):
		return &APIError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, storage.ErrTooLarge):
		return &APIError{Code: http.StatusRequestEntityTooLarge, Message: err.Error()}
	case errors.Is(err, storage.ErrStorage):
		return &APIError{Code: http.StatusBadGateway, Message: err.Error()}
	}
	log.Error().Err(err).Msg(fallback)
	return &APIError{Code: http.StatusInternalServerError, Message: fallback}
}

func BadRequest(msg string) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: msg}
}
