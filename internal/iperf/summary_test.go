package iperf

import (
	"encoding/json"
	"strings"
	"testing"
)

func reportWithEndpoints(end End) Report {
	return Report{
		Start: Start{
			Connected: []Connected{{
				Socket:     5,
				LocalHost:  "127.0.0.1",
				LocalPort:  35020,
				RemoteHost: "127.0.0.1",
				RemotePort: 5201,
			}},
		},
		End: end,
	}
}

func TestSummarizeUDPSender(t *testing.T) {
	report := reportWithEndpoints(End{
		Sum: &Aggregate{BitsPerSecond: 1_000_000, Sender: true},
	})

	summary, err := Summarize(report, true)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Role != RoleSender {
		t.Fatalf("expected sender role, got %q", summary.Role)
	}
	if summary.TotalSent != "1.00 Mbps" {
		t.Fatalf("expected total_sent 1.00 Mbps, got %q", summary.TotalSent)
	}
	if summary.TotalReceived != "" {
		t.Fatalf("expected no total_received in UDP sender mode, got %q", summary.TotalReceived)
	}

	encoded, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	if strings.Contains(string(encoded), "total_received") {
		t.Fatalf("expected total_received key to be omitted, got %s", encoded)
	}
}

func TestSummarizeUDPReceiver(t *testing.T) {
	report := reportWithEndpoints(End{
		Sum: &Aggregate{BitsPerSecond: 2_000_000, Sender: false},
	})

	summary, err := Summarize(report, true)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Role != RoleReceiver {
		t.Fatalf("expected receiver role, got %q", summary.Role)
	}
	if summary.TotalReceived != "2.00 Mbps" {
		t.Fatalf("expected total_received 2.00 Mbps, got %q", summary.TotalReceived)
	}
	if summary.TotalSent != "" {
		t.Fatalf("expected no total_sent in UDP receiver mode, got %q", summary.TotalSent)
	}
}

func TestSummarizeTCPPopulatesBothTotals(t *testing.T) {
	report := reportWithEndpoints(End{
		SumSent:     &Aggregate{BitsPerSecond: 2_000_000, Sender: true},
		SumReceived: &Aggregate{BitsPerSecond: 1_500_000, Sender: true},
	})

	summary, err := Summarize(report, false)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.TotalSent != "2.00 Mbps" {
		t.Fatalf("expected total_sent 2.00 Mbps, got %q", summary.TotalSent)
	}
	if summary.TotalReceived != "1.50 Mbps" {
		t.Fatalf("expected total_received 1.50 Mbps, got %q", summary.TotalReceived)
	}
	if summary.Role != RoleSender {
		t.Fatalf("expected sender role, got %q", summary.Role)
	}
}

func TestSummarizeTCPRoleFollowsSentAggregate(t *testing.T) {
	report := reportWithEndpoints(End{
		SumSent:     &Aggregate{BitsPerSecond: 2_000_000, Sender: false},
		SumReceived: &Aggregate{BitsPerSecond: 1_500_000, Sender: true},
	})

	summary, err := Summarize(report, false)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Role != RoleReceiver {
		t.Fatalf("expected receiver role, got %q", summary.Role)
	}
}

func TestSummarizeCopiesEndpoints(t *testing.T) {
	report := reportWithEndpoints(End{
		SumSent:     &Aggregate{},
		SumReceived: &Aggregate{},
	})

	summary, err := Summarize(report, false)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.LocalHost != "127.0.0.1" || summary.LocalPort != 35020 {
		t.Fatalf("unexpected local endpoint %s:%d", summary.LocalHost, summary.LocalPort)
	}
	if summary.RemoteHost != "127.0.0.1" || summary.RemotePort != 5201 {
		t.Fatalf("unexpected remote endpoint %s:%d", summary.RemoteHost, summary.RemotePort)
	}
}

func TestSummarizeMissingConnected(t *testing.T) {
	if _, err := Summarize(Report{}, false); err == nil {
		t.Fatal("expected error for missing connected entry")
	}
}

func TestSummarizeMissingAggregates(t *testing.T) {
	base := reportWithEndpoints(End{})
	if _, err := Summarize(base, true); err == nil {
		t.Fatal("expected error for missing end.sum in UDP mode")
	}
	if _, err := Summarize(base, false); err == nil {
		t.Fatal("expected error for missing end.sum_sent")
	}

	sentOnly := reportWithEndpoints(End{SumSent: &Aggregate{Sender: true}})
	if _, err := Summarize(sentOnly, false); err == nil {
		t.Fatal("expected error for missing end.sum_received")
	}
}

func TestParseReportRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseReport([]byte("not-json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
