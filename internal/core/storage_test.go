package core

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mockapi/internal/blob"
	"mockapi/internal/config"
	"mockapi/internal/retry"
	"mockapi/pkg/domain"
)

func TestOpenStudentStoreMemory(t *testing.T) {
	store, closer, err := OpenStudentStore(context.Background(), config.StorageConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = closer.Close() }()
	if _, ok := store.GetStudent(domain.SeedStudentID); !ok {
		t.Fatalf("expected seeded memory store")
	}
}

func TestOpenStudentStoreSQLiteReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")
	cfg := config.StorageConfig{Driver: "sqlite", SQLitePath: path}
	ctx := context.Background()

	store, closer, err := OpenStudentStore(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	svc := NewStudentService(store)
	if _, err := svc.Create(ctx, 2, domain.Student{Name: "Persisted", Age: 30, Year: "4th year"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, closer2, err := OpenStudentStore(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = closer2.Close() }()
	got, err := NewStudentService(reopened).Get(ctx, 2)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Name != "Persisted" {
		t.Fatalf("unexpected record after reopen: %+v", got)
	}
}

func TestOpenStudentStoreUnknownDriver(t *testing.T) {
	if _, _, err := OpenStudentStore(context.Background(), config.StorageConfig{Driver: "cassandra"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestRetryPolicyFallsBackToDefaults(t *testing.T) {
	def := retry.DefaultOptions()
	got := RetryPolicy(config.RetryConfig{})
	if got.MaxRetries != def.MaxRetries || got.InitialDelay != def.InitialDelay || got.BackoffFactor != def.BackoffFactor {
		t.Fatalf("expected defaults, got %+v", got)
	}
	custom := RetryPolicy(config.RetryConfig{MaxRetries: 9, InitialDelay: time.Second, MaxDelay: time.Minute, BackoffFactor: 3, JitterFactor: 0.5})
	if custom.MaxRetries != 9 || custom.InitialDelay != time.Second || custom.MaxDelay != time.Minute || custom.BackoffFactor != 3 || custom.JitterFactor != 0.5 {
		t.Fatalf("custom values not applied: %+v", custom)
	}
}

func TestOpenArchiveDrivers(t *testing.T) {
	ctx := context.Background()
	none, err := OpenArchive(ctx, config.BlobConfig{Driver: "none"})
	if err != nil || none != nil {
		t.Fatalf("none driver should yield nil store, got %v %v", none, err)
	}
	mem, err := OpenArchive(ctx, config.BlobConfig{Driver: "memory"})
	if err != nil || mem.Driver() != blob.DriverMemory {
		t.Fatalf("expected memory archive, got %v %v", mem, err)
	}
	fs, err := OpenArchive(ctx, config.BlobConfig{Driver: "FS", FSRoot: t.TempDir()})
	if err != nil || fs.Driver() != blob.DriverFilesystem {
		t.Fatalf("expected fs archive, got %v %v", fs, err)
	}
	if _, err := OpenArchive(ctx, config.BlobConfig{Driver: "gcs"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestServerRetryPolicyLogsAttempts(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	policy := serverRetryPolicy(config.RetryConfig{MaxRetries: 2}, logger, StorageMySQL)
	policy.OnRetry(1, time.Millisecond, errors.New("refused"))
	out := buf.String()
	if !strings.Contains(out, `"driver":"mysql"`) || !strings.Contains(out, `"attempt":1`) || !strings.Contains(out, "refused") {
		t.Fatalf("unexpected retry log %s", out)
	}
	if policy.MaxRetries != 2 {
		t.Fatalf("expected configured retries, got %d", policy.MaxRetries)
	}
}
