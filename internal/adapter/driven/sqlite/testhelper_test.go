package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB opens a migrated in-memory history database private to the test.
// Both pools attach to the same named database through cache=shared; the name
// is percent-encoded so t.Name() cannot leak into the DSN query string.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// journal_mode(WAL) does not apply to memory databases.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()))

	ctx := context.Background()
	writer, err := openPinged(ctx, dsn, 1)
	if err != nil {
		t.Fatalf("open test writer: %v", err)
	}
	reader, err := openPinged(ctx, dsn, 4)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("open test reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
