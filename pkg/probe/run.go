package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vpstest/pkg/log"
	"vpstest/pkg/models"

	"github.com/dustin/go-humanize"
)

const (
	// MissingPath is requested to confirm unmatched routes answer 404.
	MissingPath = "/__vpstest_probe_missing"

	expectedDatabaseChecks = 4
	bytesPerMB             = 1024 * 1024
)

// RunOptions controls the deployment payload sent by Run.
type RunOptions struct {
	Service string
	Version string
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name     string
	Detail   string
	Duration time.Duration
	Err      error
}

// Passed reports whether the check succeeded.
func (r CheckResult) Passed() bool {
	return r.Err == nil
}

// Report collects every check of a run.
type Report struct {
	Target   string
	Started  time.Time
	Duration time.Duration
	Checks   []CheckResult
}

// Failed counts failed checks.
func (r Report) Failed() int {
	failed := 0
	for _, check := range r.Checks {
		if !check.Passed() {
			failed++
		}
	}
	return failed
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return r.Failed() == 0
}

type check struct {
	name string
	run  func(ctx context.Context, c *Client) (string, error)
}

// Run executes every check against the client's deployment in order.
func Run(ctx context.Context, client *Client, opts RunOptions) Report {
	report := Report{
		Target:  client.BaseURL(),
		Started: time.Now(),
	}

	for _, chk := range checks(opts) {
		start := time.Now()
		detail, err := chk.run(ctx, client)
		result := CheckResult{
			Name:     chk.name,
			Detail:   detail,
			Duration: time.Since(start),
			Err:      err,
		}
		report.Checks = append(report.Checks, result)

		if err != nil {
			log.Error().Err(err).Str("check", chk.name).Dur("duration", result.Duration).Msg("Check failed")
			continue
		}
		log.Info().Str("check", chk.name).Str("detail", detail).Dur("duration", result.Duration).Msg("Check passed")
	}

	report.Duration = time.Since(report.Started)
	return report
}

func checks(opts RunOptions) []check {
	return []check{
		{name: "root", run: checkRoot},
		{name: "health", run: checkHealth},
		{name: "distro-info", run: checkDistroInfo},
		{name: "test-database", run: checkTestDatabase},
		{name: "deploy-test", run: func(ctx context.Context, c *Client) (string, error) {
			return checkDeployTest(ctx, c, opts)
		}},
		{name: "deploy-test-defaults", run: checkDeployDefaults},
		{name: "not-found", run: checkNotFound},
	}
}

func checkRoot(ctx context.Context, c *Client) (string, error) {
	root, err := c.Root(ctx)
	if err != nil {
		return "", err
	}
	if root.Status != "healthy" {
		return "", checkFailed("status %q", root.Status)
	}

	total, err := parseMegabytes(root.System.Memory.Total)
	if err != nil {
		return "", err
	}
	if _, err := parseMegabytes(root.System.Memory.Free); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s (%s/%s %s), env %s, %s RAM, %d CPUs",
		root.System.Hostname, root.System.Platform, root.System.Arch, root.System.Release,
		root.Environment, humanize.IBytes(total*bytesPerMB), root.System.CPUs), nil
}

func parseMegabytes(value string) (uint64, error) {
	digits, ok := strings.CutSuffix(value, " MB")
	if !ok {
		return 0, checkFailed("memory value %q lacks \" MB\" suffix", value)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, checkFailed("memory value %q is not a non-negative integer", value)
	}
	return n, nil
}

func checkHealth(ctx context.Context, c *Client) (string, error) {
	first, err := c.Health(ctx)
	if err != nil {
		return "", err
	}
	second, err := c.Health(ctx)
	if err != nil {
		return "", err
	}

	for _, h := range []*models.HealthStatus{first, second} {
		if h.Status != "healthy" {
			return "", checkFailed("status %q", h.Status)
		}
		if h.Uptime < 0 {
			return "", checkFailed("negative uptime %f", h.Uptime)
		}
	}
	if second.Uptime < first.Uptime {
		return "", checkFailed("uptime went backwards: %f then %f", first.Uptime, second.Uptime)
	}

	return fmt.Sprintf("process up %s", (time.Duration(second.Uptime * float64(time.Second))).Round(time.Second)), nil
}

func checkDistroInfo(ctx context.Context, c *Client) (string, error) {
	info, err := c.DistroInfo(ctx)
	if err != nil {
		return "", err
	}

	switch distro := info.Distro.(type) {
	case models.DistroInfo:
		return fmt.Sprintf("%s, kernel %s", distro.PrettyName, info.Kernel), nil
	case string:
		return fmt.Sprintf("%s, kernel %s", distro, info.Kernel), nil
	default:
		return "", checkFailed("unexpected distro value %v", info.Distro)
	}
}

func checkTestDatabase(ctx context.Context, c *Client) (string, error) {
	resp, err := c.TestDatabase(ctx)
	if err != nil {
		return "", err
	}
	if len(resp.Tests) != expectedDatabaseChecks {
		return "", checkFailed("want %d database checks, got %d", expectedDatabaseChecks, len(resp.Tests))
	}

	names := make([]string, 0, len(resp.Tests))
	for _, t := range resp.Tests {
		if t.Status != "simulated" {
			return "", checkFailed("%s status %q", t.Name, t.Status)
		}
		names = append(names, t.Name)
	}
	return strings.Join(names, ", "), nil
}

func checkDeployTest(ctx context.Context, c *Client, opts RunOptions) (string, error) {
	resp, err := c.DeployTest(ctx, models.DeployTestRequest{Service: opts.Service, Version: opts.Version})
	if err != nil {
		return "", err
	}

	wantService := valueOr(opts.Service, "unknown")
	wantVersion := valueOr(opts.Version, "1.0.0")
	if resp.Service != wantService || resp.Version != wantVersion {
		return "", checkFailed("echoed %s@%s, want %s@%s", resp.Service, resp.Version, wantService, wantVersion)
	}

	return fmt.Sprintf("%s@%s on %s", resp.Service, resp.Version, resp.Server), nil
}

func checkDeployDefaults(ctx context.Context, c *Client) (string, error) {
	resp, err := c.DeployTest(ctx, models.DeployTestRequest{})
	if err != nil {
		return "", err
	}
	if resp.Service != "unknown" || resp.Version != "1.0.0" {
		return "", checkFailed("defaults were %s@%s", resp.Service, resp.Version)
	}
	return "unknown@1.0.0", nil
}

func checkNotFound(ctx context.Context, c *Client) (string, error) {
	resp, err := c.NotFound(ctx, MissingPath)
	if err != nil {
		return "", err
	}
	if !strings.Contains(resp.Message, MissingPath) {
		return "", checkFailed("404 message %q does not name %s", resp.Message, MissingPath)
	}
	return resp.Message, nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
