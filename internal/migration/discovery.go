package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/loykin/dbmigrate/internal/common"
)

// unitFileRegex matches migration unit files: a timestamp ordering key, an
// underscore, a label, and the .sql extension (e.g. 20230601T1200_add_index.sql).
var unitFileRegex = regexp.MustCompile(`^(\d{8}T\d{4})_([A-Za-z0-9_]+)\.sql$`)

// Unit is one discovered migration: a stable identifier, its ordering key,
// and the executable body bound to it. Units are never mutated or deleted by
// this system; they are rediscovered fresh on every invocation.
type Unit struct {
	Name     string
	OrderKey string
	Handler  Handler
}

// Discover scans dir for migration unit files and binds each identifier to a
// handler: a Go handler from reg when one is bound, otherwise the file's SQL
// body. The result is ordered by ordering key ascending, ties broken by
// identifier comparison. Two files yielding the same identifier is a
// configuration error, as is a missing directory.
func Discover(dir string, reg *Registry) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: migration directory %s does not exist", common.ErrConfig, dir)
		}
		return nil, fmt.Errorf("failed to read migration directory %s: %w", dir, err)
	}

	seen := map[string]string{}
	var units []Unit
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := unitFileRegex.FindStringSubmatch(e.Name())
		if len(m) == 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: files %s and %s yield the same migration identifier %q",
				common.ErrConfig, prev, e.Name(), name)
		}
		seen[name] = e.Name()

		var h Handler = sqlHandler{path: filepath.Join(dir, e.Name())}
		if bound, ok := reg.Lookup(name); ok {
			h = bound
		}
		units = append(units, Unit{Name: name, OrderKey: m[1], Handler: h})
	}

	sort.Slice(units, func(i, j int) bool {
		if units[i].OrderKey != units[j].OrderKey {
			return units[i].OrderKey < units[j].OrderKey
		}
		return units[i].Name < units[j].Name
	})
	return units, nil
}
