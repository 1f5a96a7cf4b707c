package sysinfo

import "time"

// Static is a Provider returning fixed values. ProcessUptime is measured
// from Started when set so that it still grows between calls.
type Static struct {
	HostnameValue string
	PlatformValue string
	ArchValue     string
	KernelValue   string
	UptimeValue   float64
	MemoryValue   Memory
	CPUs          int
	Load          [3]float64
	Started       time.Time
	Clock         time.Time
}

func (s *Static) Hostname() string        { return s.HostnameValue }
func (s *Static) Platform() string        { return s.PlatformValue }
func (s *Static) Arch() string            { return s.ArchValue }
func (s *Static) KernelRelease() string   { return s.KernelValue }
func (s *Static) Uptime() float64         { return s.UptimeValue }
func (s *Static) Memory() Memory          { return s.MemoryValue }
func (s *Static) CPUCount() int           { return s.CPUs }
func (s *Static) LoadAverage() [3]float64 { return s.Load }

func (s *Static) ProcessUptime() float64 {
	if s.Started.IsZero() {
		return 0
	}
	return time.Since(s.Started).Seconds()
}

func (s *Static) Now() time.Time {
	if s.Clock.IsZero() {
		return time.Now()
	}
	return s.Clock
}
