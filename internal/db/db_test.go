package db

import (
	"testing"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestScopeKey(t *testing.T) {
	tests := []struct {
		scope models.Scope
		want  string
	}{
		{models.Scope{Window: models.TimeRange7Days}, "7d"},
		{models.Scope{Window: models.TimeRange30Days, Project: "acme"}, "30d/acme"},
		{models.Scope{Window: models.TimeRange1Day}, "1d"},
	}
	for _, tt := range tests {
		if got := ScopeKey(tt.scope); got != tt.want {
			t.Errorf("ScopeKey(%+v) = %q, want %q", tt.scope, got, tt.want)
		}
	}
}

func TestSnapshot_PutGet(t *testing.T) {
	db := openTestDB(t)
	scope := models.Scope{Window: models.TimeRange7Days}

	if _, ok, err := db.GetSnapshot(scope, "story/latency"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"health_score": 88}`)
	if err := db.PutSnapshot(scope, "story/latency", payload); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	got, ok, err := db.GetSnapshot(scope, "story/latency")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s", got)
	}
}

func TestSnapshot_Replace(t *testing.T) {
	db := openTestDB(t)
	scope := models.Scope{Window: models.TimeRange7Days}

	if err := db.PutSnapshot(scope, "r", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := db.PutSnapshot(scope, "r", []byte("new")); err != nil {
		t.Fatal(err)
	}

	got, _, err := db.GetSnapshot(scope, "r")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("payload = %s, want replacement", got)
	}
}

func TestSnapshot_ScopeIsolation(t *testing.T) {
	db := openTestDB(t)
	week := models.Scope{Window: models.TimeRange7Days}
	month := models.Scope{Window: models.TimeRange30Days}

	if err := db.PutSnapshot(week, "r", []byte("week")); err != nil {
		t.Fatal(err)
	}
	if err := db.PutSnapshot(month, "r", []byte("month")); err != nil {
		t.Fatal(err)
	}

	if err := db.InvalidateScope(week); err != nil {
		t.Fatalf("InvalidateScope() error = %v", err)
	}

	if _, ok, _ := db.GetSnapshot(week, "r"); ok {
		t.Error("week snapshot should be gone")
	}
	if _, ok, _ := db.GetSnapshot(month, "r"); !ok {
		t.Error("month snapshot should survive")
	}
}

func TestSnapshot_InvalidateAll(t *testing.T) {
	db := openTestDB(t)
	scope := models.Scope{Window: models.TimeRange7Days}

	for _, r := range []string{"a", "b", "c"} {
		if err := db.PutSnapshot(scope, r, []byte(r)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.SnapshotCount()
	if err != nil || n != 3 {
		t.Fatalf("SnapshotCount = %d, %v; want 3", n, err)
	}

	if err := db.InvalidateAll(); err != nil {
		t.Fatalf("InvalidateAll() error = %v", err)
	}
	n, _ = db.SnapshotCount()
	if n != 0 {
		t.Errorf("SnapshotCount = %d after clear, want 0", n)
	}
}
