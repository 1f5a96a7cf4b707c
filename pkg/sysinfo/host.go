package sysinfo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"vpstest/pkg/log"
)

const (
	// DefaultProcRoot is where the kernel exposes procfs.
	DefaultProcRoot = "/proc"

	unknownValue = "unknown"
	kbToBytes    = 1024
)

var errShortProcFile = errors.New("unexpected proc file format")

// processStart is captured once; time.Since uses the monotonic clock from it.
var processStart = time.Now()

// Host reads live state from procfs and the Go runtime. Accessors never
// fail: a read error is logged at debug level and the zero value returned.
type Host struct {
	procRoot string
	started  time.Time
}

// NewHost creates a Host reading from procRoot ("" means /proc).
func NewHost(procRoot string) *Host {
	if procRoot == "" {
		procRoot = DefaultProcRoot
	}
	return &Host{
		procRoot: procRoot,
		started:  processStart,
	}
}

func (h *Host) Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read hostname")
		return unknownValue
	}
	return name
}

func (h *Host) Platform() string {
	return runtime.GOOS
}

func (h *Host) Arch() string {
	return runtime.GOARCH
}

// KernelRelease reads sys/kernel/osrelease, e.g. "6.1.0-18-amd64".
func (h *Host) KernelRelease() string {
	data, err := os.ReadFile(h.path("sys", "kernel", "osrelease"))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read kernel release")
		return unknownValue
	}

	release := strings.TrimSpace(string(data))
	if release == "" {
		return unknownValue
	}
	return release
}

func (h *Host) Uptime() float64 {
	uptime, err := readUptime(h.path("uptime"))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read host uptime")
		return 0
	}
	return uptime
}

func (h *Host) Memory() Memory {
	mem, err := readMemory(h.path("meminfo"))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read memory info")
		return Memory{}
	}
	return mem
}

func (h *Host) CPUCount() int {
	return runtime.NumCPU()
}

func (h *Host) LoadAverage() [3]float64 {
	load, err := readLoadAverages(h.path("loadavg"))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read load averages")
		return [3]float64{}
	}
	return load
}

func (h *Host) ProcessUptime() float64 {
	return time.Since(h.started).Seconds()
}

func (h *Host) Now() time.Time {
	return time.Now()
}

func (h *Host) path(elem ...string) string {
	return filepath.Join(append([]string{h.procRoot}, elem...)...)
}

// readUptime reads the first field of /proc/uptime.
func readUptime(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("%s: %w", path, errShortProcFile)
	}

	return strconv.ParseFloat(fields[0], 64)
}

// readLoadAverages reads the 1, 5 and 15 minute averages from /proc/loadavg.
func readLoadAverages(path string) ([3]float64, error) {
	var load [3]float64

	data, err := os.ReadFile(path)
	if err != nil {
		return load, err
	}

	fields := strings.Fields(string(data))
	if len(fields) < len(load) {
		return load, fmt.Errorf("%s: %w", path, errShortProcFile)
	}

	for i := range load {
		load[i], err = strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return [3]float64{}, err
		}
	}

	return load, nil
}

type memStatValues struct {
	Total     uint64
	Free      uint64
	Available uint64
	Buffers   uint64
	Cached    uint64
}

// readMemory reads /proc/meminfo. Free memory is MemAvailable when the kernel
// reports it and MemFree+Buffers+Cached otherwise.
func readMemory(path string) (Memory, error) {
	file, err := os.Open(path)
	if err != nil {
		return Memory{}, err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("Failed to close meminfo file")
		}
	}()

	stats, err := parseMemInfo(file)
	if err != nil {
		return Memory{}, err
	}

	free := stats.Available
	if free == 0 {
		free = stats.Free + stats.Buffers + stats.Cached
	}

	return Memory{Total: stats.Total, Free: free}, nil
}

func parseMemInfo(r io.Reader) (*memStatValues, error) {
	var stats memStatValues

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		const minMemFields = 2
		fields := strings.Fields(scanner.Text())
		if len(fields) < minMemFields {
			continue
		}

		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		value *= kbToBytes

		switch strings.TrimSuffix(fields[0], ":") {
		case "MemTotal":
			stats.Total = value
		case "MemFree":
			stats.Free = value
		case "MemAvailable":
			stats.Available = value
		case "Buffers":
			stats.Buffers = value
		case "Cached":
			stats.Cached = value
		}
	}

	return &stats, scanner.Err()
}
