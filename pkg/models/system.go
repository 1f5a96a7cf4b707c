package models

import (
	"math"
	"strconv"
	"time"
)

// TimestampFormat renders UTC instants with millisecond precision, e.g. 2024-05-01T12:00:00.000Z.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

const bytesPerMB = 1024 * 1024

// SystemSnapshot describes the host serving the request.
type SystemSnapshot struct {
	Hostname  string     `json:"hostname"`
	Platform  string     `json:"platform"`
	Arch      string     `json:"arch"`
	Release   string     `json:"release"`
	Uptime    float64    `json:"uptime"`
	Memory    MemoryInfo `json:"memory"`
	CPUs      int        `json:"cpus"`
	LoadAvg   [3]float64 `json:"loadavg"`
	Timestamp string     `json:"timestamp"`
}

// MemoryInfo holds memory sizes formatted as "<N> MB".
type MemoryInfo struct {
	Total string `json:"total"`
	Free  string `json:"free"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message     string         `json:"message"`
	Status      string         `json:"status"`
	Environment string         `json:"environment"`
	System      SystemSnapshot `json:"system"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// FormatTimestamp renders t in UTC using TimestampFormat.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// FormatMegabytes rounds a byte count to whole megabytes.
func FormatMegabytes(bytes uint64) string {
	mb := int64(math.Round(float64(bytes) / bytesPerMB))
	return strconv.FormatInt(mb, 10) + " MB"
}
