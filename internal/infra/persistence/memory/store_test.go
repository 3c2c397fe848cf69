package memory

import (
	"context"
	"errors"
	"testing"

	"mockapi/pkg/domain"
)

func TestNewStoreHoldsSeedRecord(t *testing.T) {
	store := NewStore()
	got, ok := store.GetStudent(domain.SeedStudentID)
	if !ok {
		t.Fatalf("expected seed student")
	}
	if got != domain.SeedStudent() {
		t.Fatalf("unexpected seed record: %+v", got)
	}
	if n := len(store.ListStudents()); n != 1 {
		t.Fatalf("expected one student, got %d", n)
	}
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewEmptyStore()
	ctx := context.Background()
	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindStudent(7); ok {
			t.Fatalf("expected missing student lookup")
		}
		if _, err := tx.CreateStudent(7, Student{Name: "Ada", Age: 30, Year: "3rd year"}); err != nil {
			return err
		}
		if len(tx.Snapshot().ListStudents()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	if len(res.Changes) != 1 || res.Changes[0].Action != domain.ActionCreate || res.Changes[0].ID != 7 {
		t.Fatalf("unexpected changes: %+v", res.Changes)
	}

	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListStudents()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if _, ok := store.GetStudent(7); !ok {
		t.Fatalf("expected restored student")
	}
}

func TestStoreRollsBackOnError(t *testing.T) {
	store := NewStore()
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.DeleteStudent(domain.SeedStudentID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := store.GetStudent(domain.SeedStudentID); !ok {
		t.Fatalf("expected delete to be rolled back")
	}
}

func TestTransactionConflictsAndMissingKeys(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateStudent(domain.SeedStudentID, Student{Name: "Dup"})
		return err
	})
	if !errors.Is(err, domain.ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}

	for name, fn := range map[string]func(domain.Transaction) error{
		"replace": func(tx domain.Transaction) error { _, err := tx.ReplaceStudent(9, Student{}); return err },
		"update": func(tx domain.Transaction) error {
			_, err := tx.UpdateStudent(9, func(*Student) error { return nil })
			return err
		},
		"delete": func(tx domain.Transaction) error { return tx.DeleteStudent(9) },
	} {
		if _, err := store.RunInTransaction(ctx, fn); !domain.IsStudentNotFound(err) {
			t.Fatalf("%s: expected not found, got %v", name, err)
		}
	}
}

func TestUpdateAndReplaceRecordChanges(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.UpdateStudent(domain.SeedStudentID, func(s *Student) error {
			s.Age = 23
			return nil
		}); err != nil {
			return err
		}
		_, err := tx.ReplaceStudent(domain.SeedStudentID, Student{Name: "Only"})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("expected two changes, got %d", len(res.Changes))
	}
	before, _ := res.Changes[1].Before.(Student)
	if before.Age != 23 {
		t.Fatalf("expected replace to see prior update, got %+v", before)
	}
	got, _ := store.GetStudent(domain.SeedStudentID)
	if got != (Student{Name: "Only"}) {
		t.Fatalf("unexpected stored record: %+v", got)
	}
}

func TestViewIsIsolatedFromLaterWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	err := store.View(ctx, func(view domain.TransactionView) error {
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.CreateStudent(2, Student{Name: "Late"})
			return err
		}); err != nil {
			return err
		}
		if len(view.ListStudents()) != 1 {
			t.Fatalf("view should not observe later writes")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	entries := store.ListStudents()
	if len(entries) != 2 || entries[0].ID != 1 || entries[1].ID != 2 {
		t.Fatalf("expected ascending keys, got %+v", entries)
	}
}
