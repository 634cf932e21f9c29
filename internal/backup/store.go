// Package backup implements the backup, restore and copy pipelines: dumping
// an environment into a scoped working directory, packaging it as a zip
// archive with a collision-free name, and reversing archives into a target
// environment after explicit operator confirmation.
package backup

import (
	"context"
	"time"
)

// Archive describes one stored backup.
type Archive struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Store is where archives live: a local directory or a remote object store.
// Archive names are unique within a store; uniqueness is enforced by
// existence-check-then-write, so a narrow race window exists when two backup
// invocations run concurrently against the same store. Single invoker is a
// documented precondition.
type Store interface {
	// Exists reports whether an archive with the given name is present.
	Exists(ctx context.Context, name string) (bool, error)
	// Put moves the archive file at path into the store under name. The
	// store never overwrites: callers resolve a free name first.
	Put(ctx context.Context, name, path string) error
	// Fetch copies the named archive out of the store to destPath.
	Fetch(ctx context.Context, name, destPath string) error
	// List returns all archives sorted by name ascending.
	List(ctx context.Context) ([]Archive, error)
}
