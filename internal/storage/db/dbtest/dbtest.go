// Package dbtest provides isolated PostgreSQL schemas for tests.
package dbtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EnvURL names the variable holding the test server connection string.
const EnvURL = "TEST_DATABASE_URL"

// NewURL creates a fresh schema on the test server and returns a connection
// string whose search_path points at it. The schema is dropped when the test
// ends. The test is skipped when no server is configured or reachable.
func NewURL(t *testing.T) string {
	t.Helper()

	base := os.Getenv(EnvURL)
	if base == "" {
		t.Skipf("PostgreSQL not available: %s is not set", EnvURL)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, base)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer conn.Close(ctx)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := conn.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("create schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		conn, err := pgx.Connect(ctx, base)
		if err != nil {
			t.Logf("drop schema %s: %v", schema, err)
			return
		}
		defer conn.Close(ctx)

		if _, err := conn.Exec(ctx, "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	u, err := withSearchPath(base, schema)
	if err != nil {
		t.Fatalf("build test url: %v", err)
	}
	return u
}

func withSearchPath(base, schema string) (string, error) {
	if !strings.Contains(base, "://") {
		return fmt.Sprintf("%s search_path=%s", base, schema), nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", EnvURL, err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
