package models

// DistroInfo carries the interesting os-release fields.
type DistroInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	ID         string `json:"id"`
	PrettyName string `json:"prettyName"`
}

// DistroResponse is the body of GET /distro-info. Distro is either a
// DistroInfo or a sentinel string when the metadata file is unreadable.
type DistroResponse struct {
	Distro   any    `json:"distro"`
	Kernel   string `json:"kernel"`
	Hostname string `json:"hostname"`
}
