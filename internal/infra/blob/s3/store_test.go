package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"mockapi/internal/blob/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}

func TestNewUsesStaticCredentials(t *testing.T) {
	s, err := New(context.Background(), Config{
		Bucket:          "archive",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Bucket() != "archive" || s.Driver() != core.DriverS3 {
		t.Fatalf("unexpected store: bucket=%s driver=%s", s.Bucket(), s.Driver())
	}
	creds, err := s.client.Options().Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "minio" {
		t.Fatalf("expected static credentials, got %q", creds.AccessKeyID)
	}
}

func TestMockRoundTripsMetadata(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	_, err := s.Put(ctx, "simulations/sim_12345/a.json", bytes.NewReader([]byte(`{"x":1}`)), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"sim-id": "sim_12345"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, err := s.Get(ctx, "simulations/sim_12345/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"x":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if info.ContentType != "application/json" || info.Metadata["sim-id"] != "sim_12345" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.ETag == "" || strings.Contains(info.ETag, `"`) {
		t.Fatalf("expected unquoted etag, got %q", info.ETag)
	}
}

func TestMockMissingKeysAndPresign(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
	if ok, err := s.Delete(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	u, err := s.PresignURL(ctx, "k", core.SignedURLOptions{})
	if err != nil || !strings.Contains(u, "/mock-bucket/k") {
		t.Fatalf("unexpected presign result %q %v", u, err)
	}
	if _, err := s.PresignURL(ctx, "k", core.SignedURLOptions{Method: "DELETE"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDecodeChunked(t *testing.T) {
	raw := "3;chunk-signature=abc\r\nfoo\r\n2\r\nba\r\n0\r\nx-amz-checksum-crc32:AAAAAA==\r\n\r\n"
	got, err := decodeChunked([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != "fooba" {
		t.Fatalf("unexpected payload %q", got)
	}
	if _, err := decodeChunked([]byte("zz\r\n")); err == nil {
		t.Fatalf("expected error for invalid size")
	}
}
