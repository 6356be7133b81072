package iperf

import "errors"

// Roles reported in a summary.
const (
	RoleSender   = "sender"
	RoleReceiver = "receiver"
)

// Summary is the distilled result handed back to callers. The JSON field
// names match the result shape automation callers already consume, so the
// role keeps its historical "type" key.
type Summary struct {
	LocalHost     string `json:"local_host"`
	LocalPort     int    `json:"local_port"`
	RemoteHost    string `json:"remote_host"`
	RemotePort    int    `json:"remote_port"`
	Role          string `json:"type"`
	TotalSent     string `json:"total_sent,omitempty"`
	TotalReceived string `json:"total_received,omitempty"`
}

// Summarize extracts the caller-facing summary from a report. The endpoints
// always come from the first connected socket entry. With udp set, the single
// end.sum aggregate decides both the role and which one throughput field is
// populated. Otherwise both totals are populated and the role follows the
// sent aggregate's sender flag. Missing key paths are errors, never defaulted.
func Summarize(report Report, udp bool) (Summary, error) {
	if len(report.Start.Connected) == 0 {
		return Summary{}, errors.New("report missing start.connected entry")
	}
	conn := report.Start.Connected[0]
	summary := Summary{
		LocalHost:  conn.LocalHost,
		LocalPort:  conn.LocalPort,
		RemoteHost: conn.RemoteHost,
		RemotePort: conn.RemotePort,
	}

	if udp {
		sum := report.End.Sum
		if sum == nil {
			return Summary{}, errors.New("report missing end.sum aggregate")
		}
		if sum.Sender {
			summary.TotalSent = FormatRate(sum.BitsPerSecond, false)
			summary.Role = RoleSender
		} else {
			summary.TotalReceived = FormatRate(sum.BitsPerSecond, false)
			summary.Role = RoleReceiver
		}
		return summary, nil
	}

	sent := report.End.SumSent
	if sent == nil {
		return Summary{}, errors.New("report missing end.sum_sent aggregate")
	}
	received := report.End.SumReceived
	if received == nil {
		return Summary{}, errors.New("report missing end.sum_received aggregate")
	}
	summary.TotalReceived = FormatRate(received.BitsPerSecond, false)
	summary.TotalSent = FormatRate(sent.BitsPerSecond, false)
	summary.Role = RoleReceiver
	if sent.Sender {
		summary.Role = RoleSender
	}
	return summary, nil
}
