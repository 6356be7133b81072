// Package iperf builds iperf3 client invocations, runs them, and distills
// the tool's machine-readable report into a small throughput summary.
package iperf
