package migration

import (
	"github.com/loykin/dbmigrate/internal/ledger"
)

// Display labels for list_migrations output.
const (
	DisplayNotRun   = "NOT RUN"
	DisplayRunning  = "RUNNING"
	DisplayComplete = "COMPLETE"
	DisplayFailed   = "FAILED"
)

// StatusEntry is one line of list_migrations output: a discovered unit and
// the ledger's view of it.
type StatusEntry struct {
	Name   string
	State  string
	RanAt  string
	Detail string
}

// StatusOf resolves the ledger state for each discovered unit, preserving
// discovery order. Units without a record report NOT RUN.
func StatusOf(units []Unit, l *ledger.Ledger) ([]StatusEntry, error) {
	entries := make([]StatusEntry, 0, len(units))
	for _, u := range units {
		rec, err := l.Lookup(u.Name)
		if err != nil {
			return nil, err
		}
		e := StatusEntry{Name: u.Name, State: DisplayNotRun}
		if rec != nil {
			switch rec.State {
			case ledger.StateRunning:
				e.State = DisplayRunning
			case ledger.StateComplete:
				e.State = DisplayComplete
			case ledger.StateFailed:
				e.State = DisplayFailed
			}
			e.RanAt = rec.StartedAt
			if rec.Detail != nil {
				e.Detail = *rec.Detail
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
