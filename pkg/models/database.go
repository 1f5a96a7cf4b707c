package models

// DatabaseCheck is one simulated connectivity check.
type DatabaseCheck struct {
	Name   string `json:"name"`
	Port   int    `json:"port"`
	Status string `json:"status"`
}

// DatabaseTestResponse is the body of GET /test-database.
type DatabaseTestResponse struct {
	Message string          `json:"message"`
	Tests   []DatabaseCheck `json:"tests"`
	Note    string          `json:"note"`
}
