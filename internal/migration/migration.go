package migration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Handler is the executable body of one migration unit. Run is invoked at
// most once per target environment across all runner invocations.
type Handler interface {
	Run(ctx context.Context, db *sql.DB) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, db *sql.DB) error

func (f HandlerFunc) Run(ctx context.Context, db *sql.DB) error { return f(ctx, db) }

// Registry binds migration identifiers to Go handlers. Bound handlers take
// precedence over the SQL body discovered in the migration file of the same
// identifier. Binding is deterministic name-to-handler mapping; nothing is
// discovered by reflection.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register binds a handler to a migration identifier. Registering the same
// identifier twice is a configuration error.
func (r *Registry) Register(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler for migration %q", name)
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("empty migration identifier")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[key]; exists {
		return fmt.Errorf("migration %q registered twice", key)
	}
	r.handlers[key] = h
	return nil
}

// Lookup returns the handler bound to name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[strings.ToLower(name)]
	return h, ok
}

// sqlHandler executes the statements of a migration file against the target.
type sqlHandler struct {
	path string
}

func (h sqlHandler) Run(ctx context.Context, db *sql.DB) error {
	clean := filepath.Clean(h.path)
	// #nosec G304 -- path comes from controlled directory listing of migration files
	b, err := os.ReadFile(clean)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(clean), err)
	}
	for _, stmt := range splitStatements(string(b)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %q: %w", abbreviate(stmt), err)
		}
	}
	return nil
}

// splitStatements breaks a migration file into individual statements on
// semicolons, dropping line comments and blank fragments. Semicolons inside
// string literals are not supported in migration files.
func splitStatements(sqlText string) []string {
	var lines []string
	for _, line := range strings.Split(sqlText, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}
	var out []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func abbreviate(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 60 {
		return stmt[:57] + "..."
	}
	return stmt
}
