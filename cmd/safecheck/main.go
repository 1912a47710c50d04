// Command safecheck validates a YouTube URL and runs a content check on it.
//
//	safecheck [-mode mock|remote] [-remote URL] [-delay D] [-seed N] <url>
//
// Exit status is 2 for an invalid URL and 1 when the check fails.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ytsafecheck/backend/internal/config"
	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/safety"
	"github.com/ytsafecheck/backend/internal/youtube"
)

const (
	exitOK         = 0
	exitFailed     = 1
	exitInvalidURL = 2
)

type output struct {
	Validation *youtube.ValidationResult `json:"validation"`
	Result     *safety.Result            `json:"result,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("safecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", config.ModeMock, "checker to use: mock or remote")
	remote := fs.String("remote", "", "base URL of the remote checker")
	delay := fs.Duration("delay", 0, "simulated latency of the mock checker")
	seed := fs.Uint64("seed", 0, "seed for mock verdicts (0 picks one from the clock)")
	timeout := fs.Duration("timeout", 30*time.Second, "overall check timeout")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: safecheck [flags] <youtube-url>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitInvalidURL
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitInvalidURL
	}

	// Keep stdout for JSON; diagnostics go to stderr.
	logger.SetDefault(logger.New(&logger.Config{Output: stderr, Level: logger.LevelWarn}))

	validation := youtube.NewValidator().Validate(fs.Arg(0))
	out := output{Validation: &validation}
	if !validation.Valid {
		if err := writeOutput(stdout, out); err != nil {
			fmt.Fprintf(stderr, "failed to write output: %v\n", err)
			return exitFailed
		}
		return exitInvalidURL
	}

	checker, err := newChecker(*mode, *remote, *delay, *seed)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	code := exitOK
	result, err := checker.Check(ctx, validation.VideoID)
	if err != nil {
		out.Error = err.Error()
		code = exitFailed
	} else {
		out.Result = result
	}
	if err := writeOutput(stdout, out); err != nil {
		fmt.Fprintf(stderr, "failed to write output: %v\n", err)
		return exitFailed
	}
	return code
}

func newChecker(mode, remote string, delay time.Duration, seed uint64) (safety.Checker, error) {
	switch mode {
	case config.ModeMock:
		return safety.NewMockChecker(safety.MockConfig{Delay: delay, Seed: seed}), nil
	case config.ModeRemote:
		if remote == "" {
			return nil, fmt.Errorf("-remote is required with -mode remote")
		}
		return safety.NewRemoteChecker(safety.RemoteConfig{BaseURL: remote})
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func writeOutput(w io.Writer, out output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
