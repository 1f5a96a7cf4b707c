package models

// DeployTestRequest is the optional body of POST /deploy-test.
type DeployTestRequest struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// DeployTestResult echoes a deployment test back to the caller.
type DeployTestResult struct {
	Message    string `json:"message"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	DeployedAt string `json:"deployedAt"`
	Server     string `json:"server"`
}
