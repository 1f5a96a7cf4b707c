package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"vpstest/pkg/log"
	"vpstest/pkg/models"

	"github.com/labstack/echo/v4"
)

const (
	deployMessage  = "Deployment test received"
	defaultService = "unknown"
	defaultVersion = "1.0.0"
)

// postDeployTest handles POST /deploy-test, echoing service and version.
// Malformed JSON is returned as an error for the central handler.
func (s *Server) postDeployTest(ctx echo.Context) error {
	var req models.DeployTestRequest
	if err := decodeJSONBody(ctx.Request(), &req); err != nil {
		return err
	}

	result := models.DeployTestResult{
		Message:    deployMessage,
		Service:    valueOr(req.Service, defaultService),
		Version:    valueOr(req.Version, defaultVersion),
		DeployedAt: models.FormatTimestamp(s.provider.Now()),
		Server:     s.provider.Hostname(),
	}

	log.Info().
		Str("service", result.Service).
		Str("version", result.Version).
		Str("request_id", requestID(ctx)).
		Msg("Deployment test received")

	return ctx.JSON(http.StatusOK, result)
}

// decodeJSONBody fills dst from a JSON request body. Requests without a JSON
// content type and empty bodies leave dst untouched. The body must hold
// exactly one JSON value.
func decodeJSONBody(req *http.Request, dst any) error {
	if !isJSON(req.Header.Get(echo.HeaderContentType)) {
		return nil
	}

	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("invalid JSON body: %w", err)
	default:
		return fmt.Errorf("invalid JSON body: %w", errTrailingData)
	}
}

var errTrailingData = errors.New("unexpected data after top-level value")

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == echo.MIMEApplicationJSON
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
