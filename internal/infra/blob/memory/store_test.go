package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mockapi/internal/blob/core"
)

func TestStoreCopiesMetadataAndData(t *testing.T) {
	s := New()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	md := map[string]string{"a": "1"}
	info, err := s.Put(ctx, "k", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "text/plain", Metadata: md})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	md["a"] = "mutated"
	if info.LastModified != fixed || info.Size != 5 {
		t.Fatalf("unexpected info: %+v", info)
	}

	head, err := s.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Metadata["a"] != "1" {
		t.Fatalf("metadata should be copied on put, got %v", head.Metadata)
	}
	head.Metadata["a"] = "changed"

	_, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" {
		t.Fatalf("unexpected body %q", body)
	}
	again, _ := s.Head(ctx, "k")
	if again.Metadata["a"] != "1" {
		t.Fatalf("metadata should be copied on read, got %v", again.Metadata)
	}
}

func TestStoreMissingKeysAndPresign(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, err := s.Delete(ctx, "nope"); ok || err != nil {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if _, err := s.PresignURL(ctx, "nope", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
}
