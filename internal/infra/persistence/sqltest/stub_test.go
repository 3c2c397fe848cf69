package sqltest

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
)

func TestStubDBStoresAndQueriesRows(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.PingFailures = 1

	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("expected first ping to fail")
	}
	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	insert := "INSERT INTO state (bucket, payload) VALUES ($1, $2) ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload"
	for _, payload := range []string{"v1", "v2"} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "students"}, {Value: []byte(payload)}}); err != nil {
			t.Fatalf("ExecContext insert: %v", err)
		}
	}
	if len(conn.Tables["state"]) != 1 {
		t.Fatalf("expected upsert to keep one row, got %v", conn.Tables["state"])
	}

	rows, err := conn.QueryContext(ctx, "SELECT bucket, payload FROM state", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	defer func() { _ = rows.Close() }()
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(dest[1].([]byte)) != "v2" {
		t.Fatalf("expected latest payload, got %v", dest[1])
	}
	if err := rows.Next(dest); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestStubFailureToggles(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.FailExec = true
	if _, err := conn.ExecContext(ctx, "CREATE TABLE x (a int)", nil); err == nil {
		t.Fatalf("expected exec failure")
	}
	conn.FailQuery = true
	if _, err := conn.QueryContext(ctx, "SELECT a FROM x", nil); err == nil {
		t.Fatalf("expected query failure")
	}
	conn.FailBegin = true
	if _, err := conn.Begin(); err == nil {
		t.Fatalf("expected begin failure")
	}
	if _, err := conn.QueryContext(ctx, "UPDATE x SET a = 1", nil); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestStubDBHonoursDuplicateKeyUpsert(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	insert := "INSERT INTO state (bucket, payload) VALUES (?, ?) ON DUPLICATE KEY UPDATE payload = VALUES(payload)"
	for _, payload := range []string{"a", "b", "c"} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "students"}, {Value: []byte(payload)}}); err != nil {
			t.Fatalf("ExecContext insert: %v", err)
		}
	}
	rows := conn.Tables["state"]
	if len(rows) != 1 || string(rows[0]["payload"].([]byte)) != "c" {
		t.Fatalf("expected single latest row, got %v", rows)
	}
}
