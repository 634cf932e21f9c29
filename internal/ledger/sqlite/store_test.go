package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/dbmigrate/internal/ledger/connector"
)

func TestConfig_BuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  Config{DSN: "file:explicit.sqlite", Path: "/ignored"},
			want: "file:explicit.sqlite",
		},
		{
			name: "built from path",
			cfg:  Config{Path: "/data/app.sqlite"},
			want: "file:/data/app.sqlite?_busy_timeout=5000&_fk=1",
		},
		{
			name: "empty config",
			cfg:  Config{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BuildDSN(); got != tt.want {
				t.Errorf("BuildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_RecordRoundTrip(t *testing.T) {
	s := NewStore()
	if err := s.Load(map[string]interface{}{"path": filepath.Join(t.TempDir(), "ledger.sqlite")}); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := s.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer func() { _ = s.Close() }()

	th := connector.TableNames{MigrationHistory: "migration_history"}
	if err := s.Ensure(th); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}

	started := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Begin(th, "20230601T1200_add_index", started); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}

	rec, err := s.Lookup(th, "20230601T1200_add_index")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec == nil {
		t.Fatal("Lookup() returned nil after Begin")
	}
	if rec.State != connector.StateRunning {
		t.Errorf("State = %s, want running", rec.State)
	}
	if rec.StartedAt != started.Format(time.RFC3339Nano) {
		t.Errorf("StartedAt = %q, want %q", rec.StartedAt, started.Format(time.RFC3339Nano))
	}

	detail := "division by zero"
	ended := started.Add(3 * time.Second)
	if err := s.Transition(th, "20230601T1200_add_index", connector.StateFailed, ended, &detail); err != nil {
		t.Fatalf("Transition() error: %v", err)
	}
	rec, err = s.Lookup(th, "20230601T1200_add_index")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec.State != connector.StateFailed {
		t.Errorf("State = %s, want failed", rec.State)
	}
	if rec.EndedAt != ended.Format(time.RFC3339Nano) {
		t.Errorf("EndedAt = %q, want %q", rec.EndedAt, ended.Format(time.RFC3339Nano))
	}
	if rec.Detail == nil || *rec.Detail != detail {
		t.Errorf("Detail = %v, want %q", rec.Detail, detail)
	}
}

func TestStore_TransitionMissingRecord(t *testing.T) {
	s := NewStore()
	if err := s.Load(nil); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := s.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer func() { _ = s.Close() }()

	th := connector.TableNames{MigrationHistory: "migration_history"}
	if err := s.Ensure(th); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	err := s.Transition(th, "20230601T1200_missing", connector.StateComplete, time.Now(), nil)
	if err == nil {
		t.Error("Transition() on missing record succeeded, want error")
	}
}
