package server

import (
	"net/http"
	"slices"

	"vpstest/pkg/models"

	"github.com/labstack/echo/v4"
)

const (
	databaseTestMessage = "Database connectivity test (simulated)"
	databaseTestNote    = "This is a simulation. Implement actual database connections as needed."
	statusSimulated     = "simulated"
)

var simulatedChecks = []models.DatabaseCheck{
	{Name: "PostgreSQL", Port: 5432, Status: statusSimulated},
	{Name: "MySQL", Port: 3306, Status: statusSimulated},
	{Name: "Redis", Port: 6379, Status: statusSimulated},
	{Name: "MongoDB", Port: 27017, Status: statusSimulated},
}

// getTestDatabase handles GET /test-database. No connection is ever attempted.
func (s *Server) getTestDatabase(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.DatabaseTestResponse{
		Message: databaseTestMessage,
		Tests:   slices.Clone(simulatedChecks),
		Note:    databaseTestNote,
	})
}
