package iperf

import (
	"encoding/json"
	"fmt"
)

// Report mirrors the iperf3 machine-readable (-J) output, limited to the key
// paths the summary depends on. End-of-test aggregates are pointers so a
// missing key is distinguishable from a zero value; the summary depends on
// these nested paths staying stable across iperf3 versions.
type Report struct {
	Start Start `json:"start"`
	End   End   `json:"end"`
}

// Start carries connection establishment details.
type Start struct {
	Connected  []Connected `json:"connected"`
	Version    string      `json:"version"`
	SystemInfo string      `json:"system_info"`
}

// Connected describes one connected socket pair.
type Connected struct {
	Socket     int    `json:"socket"`
	LocalHost  string `json:"local_host"`
	LocalPort  int    `json:"local_port"`
	RemoteHost string `json:"remote_host"`
	RemotePort int    `json:"remote_port"`
}

// End carries the end-of-test aggregates. UDP tests report a single sum;
// TCP tests report separate sent and received sums.
type End struct {
	Sum         *Aggregate `json:"sum"`
	SumSent     *Aggregate `json:"sum_sent"`
	SumReceived *Aggregate `json:"sum_received"`
}

// Aggregate is a summary record covering the entire test run.
type Aggregate struct {
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Seconds       float64 `json:"seconds"`
	Bytes         int64   `json:"bytes"`
	BitsPerSecond float64 `json:"bits_per_second"`
	Retransmits   int64   `json:"retransmits"`
	Sender        bool    `json:"sender"`
}

// ParseReport decodes a machine-readable iperf3 report.
func ParseReport(data []byte) (Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("parse iperf3 report: %w", err)
	}
	return report, nil
}
