package iperf

import (
	"errors"
	"strconv"
	"strings"
)

// Defaults applied by Normalize.
const (
	DefaultTime           = 5
	DefaultStreams        = 1
	DefaultConnectTimeout = 5
)

// Options describes a single iperf3 client invocation.
type Options struct {
	Dest           string // server address, required
	Time           int    // seconds to transmit for
	Port           int    // server port to connect to
	Bind           string // local address to bind to
	UDP            bool
	Interval       int    // seconds between throughput reports
	Bitrate        string // target bits/sec, [KMG] with optional /count for burst mode
	Length         string // read/write buffer length, [KMG]
	Streams        int    // parallel streams
	Reverse        bool   // server sends, client receives
	ConnectTimeout int    // seconds
}

// Normalize fills unset numeric options with their defaults.
func (o *Options) Normalize() {
	if o.Time == 0 {
		o.Time = DefaultTime
	}
	if o.Streams == 0 {
		o.Streams = DefaultStreams
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
}

// Validate checks the single invariant Args relies on.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Dest) == "" {
		return errors.New("destination required")
	}
	return nil
}

// Args assembles the iperf3 client argument list. The destination and the
// JSON output flag are always present; every other flag is appended exactly
// once when its option is set and contributes nothing otherwise. The connect
// timeout is converted from seconds to the milliseconds iperf3 expects.
// Out-of-range values are left for iperf3 itself to reject.
func (o Options) Args() []string {
	args := []string{"-c", o.Dest, "-J"}
	if o.ConnectTimeout > 0 {
		args = append(args, "--connect-timeout", strconv.Itoa(o.ConnectTimeout*1000))
	}
	if o.Time > 0 {
		args = append(args, "--time", strconv.Itoa(o.Time))
	}
	if o.Port > 0 {
		args = append(args, "--port", strconv.Itoa(o.Port))
	}
	if o.Bind != "" {
		args = append(args, "--bind", o.Bind)
	}
	if o.UDP {
		args = append(args, "--udp")
	}
	if o.Interval > 0 {
		args = append(args, "--interval", strconv.Itoa(o.Interval))
	}
	if o.Bitrate != "" {
		args = append(args, "--bitrate", o.Bitrate)
	}
	if o.Length != "" {
		args = append(args, "--length", o.Length)
	}
	if o.Streams > 0 {
		args = append(args, "--parallel", strconv.Itoa(o.Streams))
	}
	if o.Reverse {
		args = append(args, "--reverse")
	}
	return args
}
