// Package config resolves runtime settings from the environment, an optional
// .env file and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = 3000
	DefaultEnvironment   = "development"
	DefaultPublicDir     = "public"
	DefaultOSReleasePath = "/etc/os-release"
	DefaultProcRoot      = "/proc"
	DefaultLogLevel      = "info"
	DefaultEnvFile       = ".env"

	maxPort = 65535
)

var ErrInvalidPort = errors.New("invalid port")

// Config holds the service settings.
type Config struct {
	Port          int
	Environment   string
	PublicDir     string
	OSReleasePath string
	ProcRoot      string
	LogLevel      string
	EnvFile       string
	ShowVersion   bool
}

// Addr is the listen address on all interfaces.
func (c Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

// Load reads ENV_FILE (default .env) into the environment without overriding
// variables that are already set, then parses args on top of the result.
func Load(name string, args []string) (Config, error) {
	envFile := envOr("ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	port, err := portFromEnv()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{EnvFile: envFile}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.IntVar(&cfg.Port, "port", port, "HTTP port to listen on (env PORT)")
	flags.StringVar(&cfg.Environment, "env", environmentFromEnv(), "Environment name reported by / (env APP_ENV or NODE_ENV)")
	flags.StringVar(&cfg.PublicDir, "public", envOr("PUBLIC_DIR", DefaultPublicDir), "Static assets directory (env PUBLIC_DIR)")
	flags.StringVar(&cfg.OSReleasePath, "os-release", envOr("OS_RELEASE_PATH", DefaultOSReleasePath), "os-release file (env OS_RELEASE_PATH)")
	flags.StringVar(&cfg.ProcRoot, "proc", envOr("PROC_ROOT", DefaultProcRoot), "procfs mount point (env PROC_ROOT)")
	flags.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", DefaultLogLevel), "Log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > maxPort {
		return Config{}, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}

	return cfg, nil
}

func portFromEnv() (int, error) {
	raw, ok := os.LookupEnv("PORT")
	if !ok || raw == "" {
		return DefaultPort, nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: PORT=%q", ErrInvalidPort, raw)
	}
	return port, nil
}

func environmentFromEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return envOr("NODE_ENV", DefaultEnvironment)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
