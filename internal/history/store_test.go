package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"iperfctl/internal/iperf"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return store
}

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t)

	run, err := store.Add(context.Background(), Run{
		Dest:     "192.0.2.10",
		Command:  "iperf3 -c 192.0.2.10 -J",
		Outcome:  iperf.OutcomePassed,
		ExitCode: 0,
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run ID")
	}
	if run.StartedAt.IsZero() {
		t.Fatal("expected generated start time")
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Add(ctx, Run{
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Dest:      "192.0.2.10",
			Command:   "iperf3 -c 192.0.2.10 -J",
			Outcome:   iperf.OutcomePassed,
		})
		if err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Fatalf("expected newest first, got %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestListRoundTripsFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stored, err := store.Add(ctx, Run{
		Dest:          "192.0.2.10",
		Command:       "iperf3 -c 192.0.2.10 -J --udp",
		ExitCode:      0,
		Outcome:       iperf.OutcomePassed,
		Role:          iperf.RoleSender,
		LocalHost:     "10.0.0.2",
		LocalPort:     35020,
		RemoteHost:    "192.0.2.10",
		RemotePort:    5201,
		TotalSent:     "1.00 Mbps",
		TotalReceived: "",
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != stored.ID {
		t.Fatalf("expected ID %q, got %q", stored.ID, got.ID)
	}
	if got.Role != iperf.RoleSender || got.TotalSent != "1.00 Mbps" || got.TotalReceived != "" {
		t.Fatalf("unexpected round-tripped run %+v", got)
	}
	if got.LocalHost != "10.0.0.2" || got.RemotePort != 5201 {
		t.Fatalf("unexpected endpoints %+v", got)
	}
}

func TestClearRemovesRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, Run{Dest: "192.0.2.10", Command: "iperf3", Outcome: iperf.OutcomeFailed}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %d runs", len(runs))
	}
}

func TestOpenRejectsSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer func() { _ = first.Close() }()

	if _, err := Open(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunFromResultCopiesSummary(t *testing.T) {
	result := &iperf.Result{
		Command:  "iperf3 -c 192.0.2.10 -J",
		ExitCode: 0,
		Outcome:  iperf.OutcomePassed,
		Summary: &iperf.Summary{
			LocalHost:     "10.0.0.2",
			LocalPort:     35020,
			RemoteHost:    "192.0.2.10",
			RemotePort:    5201,
			Role:          iperf.RoleReceiver,
			TotalReceived: "1.50 Mbps",
		},
	}

	run := RunFromResult("192.0.2.10", time.Now(), result)
	if run.Role != iperf.RoleReceiver {
		t.Fatalf("expected receiver role, got %q", run.Role)
	}
	if run.TotalReceived != "1.50 Mbps" {
		t.Fatalf("expected total_received copied, got %q", run.TotalReceived)
	}
	if run.Dest != "192.0.2.10" {
		t.Fatalf("expected dest copied, got %q", run.Dest)
	}
}
