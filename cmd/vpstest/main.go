package main

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"vpstest/pkg/config"
	"vpstest/pkg/log"
	"vpstest/pkg/server"
	"vpstest/pkg/sysinfo"

	"github.com/dustin/go-humanize"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	version := strings.TrimSpace(Version)
	if cfg.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Invalid log level")
	}

	host := sysinfo.NewHost(cfg.ProcRoot)
	mem := host.Memory()
	log.Info().
		Str("hostname", host.Hostname()).
		Str("kernel", host.KernelRelease()).
		Int("cpus", host.CPUCount()).
		Str("memory_total", humanize.IBytes(mem.Total)).
		Str("memory_free", humanize.IBytes(mem.Free)).
		Msg("Host detected")

	srv := server.New(server.Options{
		Environment:   cfg.Environment,
		PublicDir:     cfg.PublicDir,
		OSReleasePath: cfg.OSReleasePath,
		Version:       version,
		AccessLog:     os.Stdout,
	}, host)

	if err := srv.Start(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}
