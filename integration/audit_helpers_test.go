package integration_test

import (
	"context"
	"testing"

	"adanalyst/internal/audit"
)

// runEventTypes returns the event types recorded for the single run in the
// workspace audit database, keyed by type with their counts.
func runEventTypes(t *testing.T, dbPath string) (string, map[string]int) {
	t.Helper()
	ctx := context.Background()
	log := audit.NewLogger(dbPath)

	all, err := log.Events(ctx, "")
	if err != nil {
		t.Fatalf("read audit events: %v", err)
	}
	runIDs := make(map[string]struct{})
	for _, ev := range all {
		runIDs[ev.RunID] = struct{}{}
	}
	if len(runIDs) != 1 {
		t.Fatalf("expected events from exactly one run in %s, got %d", dbPath, len(runIDs))
	}
	runID := all[0].RunID

	events, err := log.Events(ctx, runID)
	if err != nil {
		t.Fatalf("read audit events for run %s: %v", runID, err)
	}
	types := make(map[string]int)
	for _, ev := range events {
		types[ev.Type]++
	}
	return runID, types
}

func requireAuditEvents(t *testing.T, dbPath string, want []string) {
	t.Helper()
	runID, types := runEventTypes(t, dbPath)
	if runID == "" {
		t.Fatalf("audit events in %s carry no run id", dbPath)
	}
	for _, eventType := range want {
		if types[eventType] == 0 {
			t.Fatalf("missing audit event %s for run %s in %s", eventType, runID, dbPath)
		}
	}
}
