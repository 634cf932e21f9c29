package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/loykin/dbmigrate/internal/common"
	"github.com/loykin/dbmigrate/internal/ledger"
)

// RunError is the typed failure of one migration body. It carries the unit
// identifier and the underlying cause so callers can report which unit broke
// the chain without parsing error strings.
type RunError struct {
	Name  string
	Cause error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("migration %s failed: %v", e.Name, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }

// Status is the outcome of one unit within a single runner invocation.
type Status string

const (
	// StatusApplied means the body executed and the ledger records complete.
	StatusApplied Status = "applied"
	// StatusSkipped means a complete record already existed.
	StatusSkipped Status = "skipped"
	// StatusAttention means a running or failed record exists; the unit was
	// not executed and needs operator inspection.
	StatusAttention Status = "attention"
	// StatusFailed means the body raised; the ledger records failed.
	StatusFailed Status = "failed"
)

// Result pairs a unit with its outcome in this invocation.
type Result struct {
	Name   string
	Status Status
	Err    error
}

// Runner applies discovered units in order against one target environment.
//
// Migrations are not independent: their ordering encodes a dependency chain,
// so a body failure halts the chain. Later units stay untouched and the
// error is returned as a *RunError. Units whose ledger record is running or
// failed are skipped, never auto-retried; the operator decides.
//
// The runner assumes it is the only process migrating the environment.
type Runner struct {
	DB     *sql.DB
	Ledger *ledger.Ledger
	Logger *common.Logger
}

func (r *Runner) logger() *common.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return common.GetLogger().WithComponent("runner")
}

// Run processes units in the given order. It returns the per-unit results,
// including the failed unit when an execution error halts the chain.
func (r *Runner) Run(ctx context.Context, units []Unit) ([]Result, error) {
	results := make([]Result, 0, len(units))
	for _, u := range units {
		log := r.logger().WithMigration(u.Name)

		rec, err := r.Ledger.Lookup(u.Name)
		if err != nil {
			return results, fmt.Errorf("ledger lookup for %s: %w", u.Name, err)
		}
		if rec != nil {
			switch rec.State {
			case ledger.StateComplete:
				log.Debug("already complete, skipping")
				results = append(results, Result{Name: u.Name, Status: StatusSkipped})
				continue
			default:
				// running or failed: left for the operator, never auto-retried
				log.Warn("previous run did not complete, skipping", "state", string(rec.State))
				results = append(results, Result{Name: u.Name, Status: StatusAttention})
				continue
			}
		}

		if err := r.Ledger.Begin(u.Name); err != nil {
			return results, fmt.Errorf("ledger begin for %s: %w", u.Name, err)
		}
		log.Info("applying migration")

		if runErr := u.Handler.Run(ctx, r.DB); runErr != nil {
			if ferr := r.Ledger.Fail(u.Name, runErr); ferr != nil {
				log.Error("failed to record migration failure", "error", ferr)
			}
			log.Error("migration failed, halting chain", "error", runErr)
			results = append(results, Result{Name: u.Name, Status: StatusFailed, Err: runErr})
			return results, &RunError{Name: u.Name, Cause: runErr}
		}

		if err := r.Ledger.Complete(u.Name); err != nil {
			return results, fmt.Errorf("ledger complete for %s: %w", u.Name, err)
		}
		log.Info("migration applied")
		results = append(results, Result{Name: u.Name, Status: StatusApplied})
	}
	return results, nil
}
