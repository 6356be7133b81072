package history

import (
	"time"

	"iperfctl/internal/iperf"
)

// Run is one recorded measurement attempt.
type Run struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	Dest          string        `json:"dest"`
	Command       string        `json:"cmd"`
	ExitCode      int           `json:"rc"`
	Outcome       iperf.Outcome `json:"outcome"`
	Message       string        `json:"msg,omitempty"`
	Role          string        `json:"type,omitempty"`
	LocalHost     string        `json:"local_host,omitempty"`
	LocalPort     int           `json:"local_port,omitempty"`
	RemoteHost    string        `json:"remote_host,omitempty"`
	RemotePort    int           `json:"remote_port,omitempty"`
	TotalSent     string        `json:"total_sent,omitempty"`
	TotalReceived string        `json:"total_received,omitempty"`
}

// RunFromResult builds a history record from a finished measurement.
func RunFromResult(dest string, startedAt time.Time, result *iperf.Result) Run {
	run := Run{
		StartedAt: startedAt,
		Dest:      dest,
		Command:   result.Command,
		ExitCode:  result.ExitCode,
		Outcome:   result.Outcome,
		Message:   result.Message,
	}
	if summary := result.Summary; summary != nil {
		run.Role = summary.Role
		run.LocalHost = summary.LocalHost
		run.LocalPort = summary.LocalPort
		run.RemoteHost = summary.RemoteHost
		run.RemotePort = summary.RemotePort
		run.TotalSent = summary.TotalSent
		run.TotalReceived = summary.TotalReceived
	}
	return run
}
