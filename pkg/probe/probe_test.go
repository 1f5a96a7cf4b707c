package probe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vpstest/pkg/models"
	"vpstest/pkg/server"
	"vpstest/pkg/sysinfo"
)

// ProbeTestSuite runs the probe against a live in-process deployment
type ProbeTestSuite struct {
	suite.Suite
	ts     *httptest.Server
	client *Client
}

func (s *ProbeTestSuite) SetupTest() {
	provider := &sysinfo.Static{
		HostnameValue: "vps-probe",
		PlatformValue: "linux",
		ArchValue:     "arm64",
		KernelValue:   "6.6.0",
		MemoryValue:   sysinfo.Memory{Total: 2048 * 1024 * 1024, Free: 512 * 1024 * 1024},
		CPUs:          1,
		Started:       time.Now(),
	}

	srv := server.New(server.Options{
		Environment:   "production",
		OSReleasePath: filepath.Join(s.T().TempDir(), "missing-os-release"),
		AccessLog:     io.Discard,
	}, provider)

	s.ts = httptest.NewServer(srv.Handler())
	s.client = NewClient(Options{
		BaseURL:      s.ts.URL + "/",
		RetryMax:     1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		Timeout:      5 * time.Second,
	})
}

func (s *ProbeTestSuite) TearDownTest() {
	s.ts.Close()
}

func (s *ProbeTestSuite) TestNewClientDefaults() {
	client := NewClient(Options{BaseURL: "http://vps.example.com//", RetryMax: -1})

	s.Equal("http://vps.example.com", client.BaseURL())
	s.Equal(0, client.http.RetryMax)
	s.Equal(DefaultRetryWaitMin, client.http.RetryWaitMin)
	s.Equal(DefaultRetryWaitMax, client.http.RetryWaitMax)
	s.Equal(DefaultTimeout, client.http.HTTPClient.Timeout)
}

func (s *ProbeTestSuite) TestRoot() {
	root, err := s.client.Root(context.Background())
	s.Require().NoError(err)

	s.Equal("healthy", root.Status)
	s.Equal("production", root.Environment)
	s.Equal("vps-probe", root.System.Hostname)
	s.Equal("2048 MB", root.System.Memory.Total)
}

func (s *ProbeTestSuite) TestDistroInfoSentinel() {
	info, err := s.client.DistroInfo(context.Background())
	s.Require().NoError(err)

	sentinel, ok := info.Distro.(string)
	s.Require().True(ok)
	s.Contains(sentinel, "Could not read")
	s.Equal("6.6.0", info.Kernel)
}

func (s *ProbeTestSuite) TestDeployTest() {
	resp, err := s.client.DeployTest(context.Background(), models.DeployTestRequest{Service: "api", Version: "2.1.0"})
	s.Require().NoError(err)

	s.Equal("api", resp.Service)
	s.Equal("2.1.0", resp.Version)
	s.Equal("vps-probe", resp.Server)
}

func (s *ProbeTestSuite) TestNotFound() {
	resp, err := s.client.NotFound(context.Background(), "/nope")
	s.Require().NoError(err)
	s.Equal("Not Found", resp.Error)
	s.Equal("Route /nope not found", resp.Message)
}

func (s *ProbeTestSuite) TestUnexpectedStatus() {
	_, err := s.client.NotFound(context.Background(), "/health")

	s.Require().Error(err)
	s.ErrorIs(err, ErrUnexpectedStatus)

	var statusErr *StatusError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(http.StatusNotFound, statusErr.Want)
	s.Equal(http.StatusOK, statusErr.Got)
}

func (s *ProbeTestSuite) TestRunAllPass() {
	report := Run(context.Background(), s.client, RunOptions{Service: "web", Version: "3.0.0"})

	s.True(report.OK(), "%+v", report.Checks)
	s.Equal(0, report.Failed())
	s.Equal(s.ts.URL, report.Target)
	s.Len(report.Checks, 7)

	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, check.Name)
		s.NotEmpty(check.Detail, check.Name)
	}
	s.Equal([]string{"root", "health", "distro-info", "test-database", "deploy-test", "deploy-test-defaults", "not-found"}, names)
	s.Contains(report.Checks[0].Detail, "2.0 GiB")
	s.Contains(report.Checks[4].Detail, "web@3.0.0")
}

func (s *ProbeTestSuite) TestRunReportsBrokenDeployment() {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_ = json.NewEncoder(w).Encode(models.HealthStatus{Status: "degraded", Uptime: 1})
		case "/test-database":
			_ = json.NewEncoder(w).Encode(models.DatabaseTestResponse{Tests: []models.DatabaseCheck{{Name: "Redis", Status: "simulated"}}})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Something went wrong!", Message: "boom"})
		}
	}))
	defer broken.Close()

	client := NewClient(Options{BaseURL: broken.URL, RetryMax: 0})
	report := Run(context.Background(), client, RunOptions{})

	s.False(report.OK())
	s.Equal(len(report.Checks), report.Failed())

	byName := map[string]CheckResult{}
	for _, check := range report.Checks {
		byName[check.Name] = check
	}
	s.ErrorIs(byName["health"].Err, ErrCheckFailed)
	s.ErrorIs(byName["test-database"].Err, ErrCheckFailed)
	s.ErrorIs(byName["root"].Err, ErrUnexpectedStatus)
	s.ErrorIs(byName["not-found"].Err, ErrUnexpectedStatus)
}

func (s *ProbeTestSuite) TestConnectionErrorsAreRetried() {
	var calls atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the connection without a response.
			if hijacker, ok := w.(http.Hijacker); ok {
				if conn, _, err := hijacker.Hijack(); err == nil {
					_ = conn.Close()
				}
			}
			return
		}
		_ = json.NewEncoder(w).Encode(models.HealthStatus{Status: "healthy", Uptime: 2})
	}))
	defer flaky.Close()

	client := NewClient(Options{BaseURL: flaky.URL, RetryMax: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	health, err := client.Health(context.Background())

	s.Require().NoError(err)
	s.Equal("healthy", health.Status)
	s.Equal(int32(2), calls.Load())
}

func (s *ProbeTestSuite) TestHTTPErrorsAreNotRetried() {
	var calls atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	client := NewClient(Options{BaseURL: failing.URL, RetryMax: 3, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	_, err := client.Health(context.Background())

	s.ErrorIs(err, ErrUnexpectedStatus)
	s.Equal(int32(1), calls.Load())
}

func (s *ProbeTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.client.Health(ctx)
	s.Require().Error(err)
	s.True(errors.Is(err, context.Canceled))
}

func (s *ProbeTestSuite) TestParseMegabytes() {
	n, err := parseMegabytes("1024 MB")
	s.NoError(err)
	s.Equal(uint64(1024), n)

	_, err = parseMegabytes("1024")
	s.ErrorIs(err, ErrCheckFailed)

	_, err = parseMegabytes("-1 MB")
	s.ErrorIs(err, ErrCheckFailed)
}

func TestProbeSuite(t *testing.T) {
	suite.Run(t, new(ProbeTestSuite))
}
