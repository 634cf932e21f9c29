package backup

import (
	"context"
	"fmt"
	"time"
)

// ArchiveExt is the archive file extension.
const ArchiveExt = ".zip"

// maxNameAttempts bounds the collision counter scan.
const maxNameAttempts = 10000

// ArchiveName formats an archive name: {db}__{YYYY_MM_DD}.zip, with _{n}
// appended for counter >= 2.
func ArchiveName(dbName string, date time.Time, counter int) string {
	base := fmt.Sprintf("%s__%s", dbName, date.Format("2006_01_02"))
	if counter >= 2 {
		return fmt.Sprintf("%s_%d%s", base, counter, ArchiveExt)
	}
	return base + ArchiveExt
}

// NextArchiveName resolves the first free archive name in the store for the
// given database and date: the bare name, then _2, _3, and so on. An
// existing archive is never overwritten.
func NextArchiveName(ctx context.Context, st Store, dbName string, date time.Time) (string, error) {
	for counter := 1; counter <= maxNameAttempts; counter++ {
		name := ArchiveName(dbName, date, counter)
		exists, err := st.Exists(ctx, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free archive name for %s on %s", dbName, date.Format("2006_01_02"))
}
