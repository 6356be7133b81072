package iperf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// ConnectFailureMarker is the stdout substring iperf3 emits when the server
// cannot be reached. It is surfaced verbatim as the failure message.
const ConnectFailureMarker = "unable to connect to server"

// Outcome tags the exit-code branches of a measurement.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"  // exit 0, summary extracted
	OutcomeFailed  Outcome = "failed"  // exit 1, message derived from output
	OutcomeUnknown Outcome = "unknown" // any other exit code, raw passthrough
)

// Result captures one finished measurement attempt. The JSON shape is the
// caller-facing envelope: raw captured output alongside the derived summary.
type Result struct {
	Command  string   `json:"cmd"`
	ExitCode int      `json:"rc"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	Outcome  Outcome  `json:"outcome"`
	Message  string   `json:"msg"`
	Summary  *Summary `json:"parsed,omitempty"`
}

// Option configures the client.
type Option func(*Client)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// Client runs iperf3 client tests against a remote server.
type Client struct {
	binary string
}

// NewClient constructs a client using defaults.
func NewClient(opts ...Option) *Client {
	client := &Client{binary: "iperf3"}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Measure runs a single blocking iperf3 test and classifies its exit status.
// Exit code 0 yields a passed result with a summary; a malformed or
// incomplete report on a zero exit propagates as an error. Exit code 1
// yields a failed result whose message is the connection failure marker when
// stdout contains it and empty otherwise. Any other exit code is passed
// through raw without a summary or message. There are no retries; timeout
// enforcement is delegated to iperf3's own --connect-timeout flag.
func (c *Client) Measure(ctx context.Context, opts Options) (*Result, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	args := opts.Args()
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if runErr := cmd.Run(); runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", c.binary, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	result := &Result{
		Command:  strings.Join(append([]string{c.binary}, args...), " "),
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	switch exitCode {
	case 0:
		report, err := ParseReport(stdout.Bytes())
		if err != nil {
			return nil, err
		}
		summary, err := Summarize(report, opts.UDP)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomePassed
		result.Summary = &summary
	case 1:
		result.Outcome = OutcomeFailed
		if strings.Contains(result.Stdout, ConnectFailureMarker) {
			result.Message = ConnectFailureMarker
		}
	default:
		result.Outcome = OutcomeUnknown
	}

	return result, nil
}
