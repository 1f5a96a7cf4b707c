// Package distro reads os-release style metadata files.
package distro

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"vpstest/pkg/models"
)

const (
	// DefaultPath is the standard location of the os-release file.
	DefaultPath = "/etc/os-release"

	unknownValue = "Unknown"
)

// Result is either Parsed (Info set) or Unavailable (Reason set).
type Result struct {
	Info   *models.DistroInfo
	Reason error
	Path   string
}

// Parsed reports whether the metadata file was read.
func (r Result) Parsed() bool {
	return r.Info != nil
}

// Sentinel is the placeholder text reported when the file is unavailable.
func (r Result) Sentinel() string {
	return "Could not read " + r.Path
}

// Value returns the DistroInfo when parsed and the sentinel string otherwise.
func (r Result) Value() any {
	if r.Parsed() {
		return *r.Info
	}
	return r.Sentinel()
}

// MarshalJSON encodes the result as a DistroInfo object or a sentinel string.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

// Read loads and parses the os-release file at path. It never returns an
// error: read failures come back as an Unavailable result.
func Read(path string) Result {
	file, err := os.Open(path)
	if err != nil {
		return Result{Path: path, Reason: err}
	}
	defer func() {
		_ = file.Close()
	}()

	fields, err := Parse(file)
	if err != nil {
		return Result{Path: path, Reason: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	info := FromFields(fields)
	return Result{Path: path, Info: &info}
}

// Parse reads KEY=VALUE lines. Values may be wrapped in double quotes. Blank
// lines, comments and entries with an empty key or value are skipped; a
// repeated key keeps its last value.
func Parse(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "" || value == "" {
			continue
		}

		fields[key] = value
	}

	return fields, scanner.Err()
}

// FromFields picks the reported keys out of parsed os-release fields.
func FromFields(fields map[string]string) models.DistroInfo {
	return models.DistroInfo{
		Name:       valueOr(fields, "NAME"),
		Version:    valueOr(fields, "VERSION"),
		ID:         valueOr(fields, "ID"),
		PrettyName: valueOr(fields, "PRETTY_NAME"),
	}
}

func valueOr(fields map[string]string, key string) string {
	if v, ok := fields[key]; ok {
		return v
	}
	return unknownValue
}
