// Package sysinfo exposes host and process state behind a narrow interface.
package sysinfo

import (
	"time"

	"vpstest/pkg/models"
)

// Provider answers questions about the host and the running process.
type Provider interface {
	Hostname() string
	Platform() string
	Arch() string
	KernelRelease() string
	// Uptime is host uptime in seconds.
	Uptime() float64
	Memory() Memory
	CPUCount() int
	LoadAverage() [3]float64
	// ProcessUptime is seconds since the process started; it never decreases.
	ProcessUptime() float64
	Now() time.Time
}

// Memory holds total and free memory in bytes.
type Memory struct {
	Total uint64
	Free  uint64
}

// Snapshot collects a SystemSnapshot from p.
func Snapshot(p Provider) models.SystemSnapshot {
	mem := p.Memory()

	return models.SystemSnapshot{
		Hostname: p.Hostname(),
		Platform: p.Platform(),
		Arch:     p.Arch(),
		Release:  p.KernelRelease(),
		Uptime:   p.Uptime(),
		Memory: models.MemoryInfo{
			Total: models.FormatMegabytes(mem.Total),
			Free:  models.FormatMegabytes(mem.Free),
		},
		CPUs:      p.CPUCount(),
		LoadAvg:   p.LoadAverage(),
		Timestamp: models.FormatTimestamp(p.Now()),
	}
}
