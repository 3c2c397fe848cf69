package core

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"

	"mockapi/internal/infra/persistence/memory"
	"mockapi/pkg/domain"
)

func newStudentService(t *testing.T, opts ...ServiceOption) *StudentService {
	t.Helper()
	return NewStudentService(memory.NewStore(), opts...)
}

func TestStudentServiceGet(t *testing.T) {
	svc := newStudentService(t)
	ctx := context.Background()

	got, err := svc.Get(ctx, domain.SeedStudentID)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if got != domain.SeedStudent() {
		t.Fatalf("unexpected seed: %+v", got)
	}
	if _, err := svc.Get(ctx, 2); !domain.IsStudentNotFound(err) {
		t.Fatalf("expected not found for absent key, got %v", err)
	}
}

func TestStudentServiceFindByNameModes(t *testing.T) {
	ctx := context.Background()
	setup := func(mode LookupMode) *StudentService {
		svc := newStudentService(t, WithLookupMode(mode))
		if _, err := svc.Create(ctx, 5, domain.Student{Name: "Ravi", Age: 20, Year: "1st year"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		return svc
	}

	scan := setup(LookupScan)
	entry, ok, err := scan.FindByName(ctx, domain.Some("Ravi"))
	if err != nil || !ok {
		t.Fatalf("scan should find later entry: ok=%v err=%v", ok, err)
	}
	if entry.ID != 5 || entry.Student.Age != 20 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	first := setup(LookupFirstEntry)
	if _, ok, _ := first.FindByName(ctx, domain.Some("Ravi")); ok {
		t.Fatalf("first-entry mode should only compare the lowest key")
	}
	if entry, ok, _ := first.FindByName(ctx, domain.Some("Shlok")); !ok || entry.ID != domain.SeedStudentID {
		t.Fatalf("first-entry mode should match the lowest key, got %+v %v", entry, ok)
	}

	if _, ok, _ := scan.FindByName(ctx, domain.Optional[string]{}); ok {
		t.Fatalf("unset name should never match")
	}
	if _, ok, _ := scan.FindByName(ctx, domain.Some("Nobody")); ok {
		t.Fatalf("unknown name should not match")
	}
}

func TestStudentServiceCreateConflict(t *testing.T) {
	svc := newStudentService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, domain.SeedStudentID, domain.Student{Name: "Other"})
	if !errors.Is(err, domain.ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}
	got, _ := svc.Get(ctx, domain.SeedStudentID)
	if got != domain.SeedStudent() {
		t.Fatalf("conflicting create must not modify the record, got %+v", got)
	}

	created, err := svc.Create(ctx, 42, domain.Student{Name: "Mira", Age: 19, Year: "1st year"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Mira" {
		t.Fatalf("unexpected created record: %+v", created)
	}
	entries, err := svc.List(ctx)
	if err != nil || len(entries) != 2 || entries[1].ID != 42 {
		t.Fatalf("unexpected list %+v %v", entries, err)
	}
}

func TestStudentServiceUpdateModes(t *testing.T) {
	ctx := context.Background()
	patch := domain.StudentPatch{Name: domain.Some("Shlok K")}

	merge := newStudentService(t)
	got, err := merge.Update(ctx, domain.SeedStudentID, patch)
	if err != nil {
		t.Fatalf("merge update: %v", err)
	}
	want := domain.Student{Name: "Shlok K", Age: 22, Year: "2nd year"}
	if got != want {
		t.Fatalf("merge should retain omitted fields, got %+v", got)
	}

	replace := newStudentService(t, WithUpdateMode(UpdateReplace))
	if _, err := replace.Update(ctx, domain.SeedStudentID, patch); err != nil {
		t.Fatalf("replace update: %v", err)
	}
	stored, _ := replace.Get(ctx, domain.SeedStudentID)
	if stored != (domain.Student{Name: "Shlok K"}) {
		t.Fatalf("replace should reset omitted fields, got %+v", stored)
	}

	if _, err := merge.Update(ctx, 9, patch); !domain.IsStudentNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	bad := newStudentService(t, WithUpdateMode("upsert"))
	if _, err := bad.Update(ctx, domain.SeedStudentID, patch); err == nil {
		t.Fatalf("expected error for unknown update mode")
	}
}

func TestStudentServiceDelete(t *testing.T) {
	svc := newStudentService(t)
	ctx := context.Background()
	if err := svc.Delete(ctx, domain.SeedStudentID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, domain.SeedStudentID); !domain.IsStudentNotFound(err) {
		t.Fatalf("expected record gone, got %v", err)
	}
	if err := svc.Delete(ctx, domain.SeedStudentID); !domain.IsStudentNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestStudentServiceInstrumentation(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	exporter, tp := newSpanRecorder(t)
	svc := newStudentService(t, WithMetricsRecorder(metrics), WithTracer(tp.Tracer("test")))
	ctx := context.Background()

	if _, err := svc.Get(ctx, domain.SeedStudentID); err != nil {
		t.Fatalf("get: %v", err)
	}
	_, _ = svc.Get(ctx, 2)

	if !metrics.has("students.get", true) || !metrics.has("students.get", false) {
		t.Fatalf("expected success and failure observations, got %+v", metrics.calls)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected two spans, got %d", len(spans))
	}
	if spans[0].Name != "students.get" || spans[0].Status.Code != codes.Ok {
		t.Fatalf("unexpected first span: %s %v", spans[0].Name, spans[0].Status)
	}
	if spans[1].Status.Code != codes.Error || len(spans[1].Events) == 0 {
		t.Fatalf("failed lookup should mark span as error with an event, got %+v", spans[1].Status)
	}
}

func TestStudentServiceFindByNameOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	first := NewStudentService(memory.NewEmptyStore(), WithLookupMode(LookupFirstEntry))
	if _, ok, err := first.FindByName(ctx, domain.Some("Shlok")); ok || !errors.Is(err, domain.ErrNoStudents) {
		t.Fatalf("first-entry on empty store: ok=%v err=%v", ok, err)
	}
	scan := NewStudentService(memory.NewEmptyStore())
	if _, ok, err := scan.FindByName(ctx, domain.Some("Shlok")); ok || err != nil {
		t.Fatalf("scan on empty store: ok=%v err=%v", ok, err)
	}
}
