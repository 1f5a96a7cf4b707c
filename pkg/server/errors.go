package server

import (
	"errors"
	"fmt"
	"net/http"

	"vpstest/pkg/log"
	"vpstest/pkg/models"

	"github.com/labstack/echo/v4"
)

const (
	notFoundError = "Not Found"
	internalError = "Something went wrong!"
)

// handleError is the single translation point from returned errors to JSON.
// Unmatched routes and method mismatches become 404; everything else is 500.
func (s *Server) handleError(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		log.Warn().Err(err).Str("request_id", requestID(ctx)).Msg("Error after response was committed")
		return
	}

	req := ctx.Request()

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && isRouteMiss(httpErr.Code) {
		writeError(ctx, http.StatusNotFound, models.ErrorResponse{
			Error:   notFoundError,
			Message: fmt.Sprintf("Route %s not found", req.URL.RequestURI()),
		})
		return
	}

	var recovered *recoveredPanic
	if !errors.As(err, &recovered) {
		log.Error().
			Err(err).
			Str("method", req.Method).
			Str("uri", req.URL.RequestURI()).
			Str("request_id", requestID(ctx)).
			Msg("Request failed")
	}

	writeError(ctx, http.StatusInternalServerError, models.ErrorResponse{
		Error:   internalError,
		Message: errorMessage(err),
	})
}

func isRouteMiss(code int) bool {
	return code == http.StatusNotFound || code == http.StatusMethodNotAllowed
}

// errorMessage prefers the plain message of an echo.HTTPError over its
// "code=..., message=..." rendering.
func errorMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}

func writeError(ctx echo.Context, status int, body models.ErrorResponse) {
	if ctx.Request().Method == http.MethodHead {
		if err := ctx.NoContent(status); err != nil {
			log.Warn().Err(err).Msg("Failed to write error response")
		}
		return
	}

	if err := ctx.JSON(status, body); err != nil {
		log.Warn().Err(err).Msg("Failed to write error response")
	}
}
