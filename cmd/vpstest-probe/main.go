package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"vpstest/pkg/log"
	"vpstest/pkg/probe"
)

const (
	defaultURL         = "http://127.0.0.1:3000"
	defaultRunTimeout  = 2 * time.Minute
	separatorLineWidth = 80
)

func main() {
	// Initialize logger
	_ = log.Logger

	target := flag.String("url", defaultURL, "Base URL of the deployed application")
	retryMax := flag.Int("retry-max", probe.DefaultRetryMax, "Maximum number of retries on connection errors")
	retryWaitMin := flag.Duration("retry-wait-min", probe.DefaultRetryWaitMin, "Minimum wait time between retries")
	retryWaitMax := flag.Duration("retry-wait-max", probe.DefaultRetryWaitMax, "Maximum wait time between retries")
	timeout := flag.Duration("timeout", probe.DefaultTimeout, "Per-request timeout")
	runTimeout := flag.Duration("run-timeout", defaultRunTimeout, "Timeout for the whole probe run")
	service := flag.String("service", "vpstest-probe", "Service name sent to /deploy-test")
	version := flag.String("version", "1.0.0", "Version sent to /deploy-test")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	if !strings.HasPrefix(*target, "http://") && !strings.HasPrefix(*target, "https://") {
		log.Fatal().Str("url", *target).Msg("URL must start with http:// or https://")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *runTimeout)
	defer cancel()

	client := probe.NewClient(probe.Options{
		BaseURL:      *target,
		RetryMax:     *retryMax,
		RetryWaitMin: *retryWaitMin,
		RetryWaitMax: *retryWaitMax,
		Timeout:      *timeout,
	})

	log.Info().Str("url", client.BaseURL()).Msg("Probing deployment")
	report := probe.Run(ctx, client, probe.RunOptions{Service: *service, Version: *version})
	printSummary(report)

	if !report.OK() {
		os.Exit(1)
	}
}

func printSummary(report probe.Report) {
	fmt.Println(strings.Repeat("=", separatorLineWidth))
	fmt.Printf("Probe of %s\n", report.Target)
	fmt.Println(strings.Repeat("=", separatorLineWidth))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tRESULT\tTIME\tDETAIL")
	for _, check := range report.Checks {
		result := "PASS"
		detail := check.Detail
		if !check.Passed() {
			result = "FAIL"
			detail = check.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", check.Name, result, check.Duration.Round(time.Millisecond), detail)
	}
	_ = w.Flush()

	fmt.Println(strings.Repeat("-", separatorLineWidth))
	fmt.Printf("%d/%d checks passed in %s\n",
		len(report.Checks)-report.Failed(), len(report.Checks), report.Duration.Round(time.Millisecond))
}
