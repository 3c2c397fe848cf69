package core

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"mockapi/pkg/domain"
)

// LookupMode selects how FindByName walks the store.
type LookupMode string

const (
	// LookupScan compares every student in ascending key order.
	LookupScan LookupMode = "scan"
	// LookupFirstEntry compares only the lowest key and reports no match
	// otherwise, matching the historical endpoint behaviour. An empty store
	// yields domain.ErrNoStudents.
	LookupFirstEntry LookupMode = "first-entry"
)

// UpdateMode selects how Update applies a patch.
type UpdateMode string

const (
	// UpdateMerge changes only the supplied fields.
	UpdateMerge UpdateMode = "merge"
	// UpdateReplace stores the patch as the whole record; omitted fields reset
	// to their zero value.
	UpdateReplace UpdateMode = "replace"
)

// StudentService exposes the student operations over a single owned store.
type StudentService struct {
	store domain.PersistentStore
	cfg   serviceConfig
}

// NewStudentService constructs a service backed by store.
func NewStudentService(store domain.PersistentStore, opts ...ServiceOption) *StudentService {
	return &StudentService{store: store, cfg: newServiceConfig(opts)}
}

// Store returns the underlying storage implementation.
func (s *StudentService) Store() domain.PersistentStore { return s.store }

// LookupMode reports the configured name lookup mode.
func (s *StudentService) LookupMode() LookupMode { return s.cfg.lookupMode }

// UpdateMode reports the configured update mode.
func (s *StudentService) UpdateMode() UpdateMode { return s.cfg.updateMode }

// Get returns the student stored under id or ErrStudentNotFound.
func (s *StudentService) Get(ctx context.Context, id int) (domain.Student, error) {
	var out domain.Student
	err := s.cfg.run(ctx, "students.get", func(ctx context.Context) error {
		return s.store.View(ctx, func(v domain.TransactionView) error {
			st, ok := v.FindStudent(id)
			if !ok {
				return domain.ErrStudentNotFound{ID: id}
			}
			out = st
			return nil
		})
	}, attribute.Int("student.id", id))
	return out, err
}

// List returns all students ordered by key.
func (s *StudentService) List(ctx context.Context) ([]domain.StudentEntry, error) {
	var out []domain.StudentEntry
	err := s.cfg.run(ctx, "students.list", func(ctx context.Context) error {
		return s.store.View(ctx, func(v domain.TransactionView) error {
			out = v.ListStudents()
			return nil
		})
	})
	return out, err
}

// FindByName returns the first student whose name equals name. An unset name
// never matches.
func (s *StudentService) FindByName(ctx context.Context, name domain.Optional[string]) (domain.StudentEntry, bool, error) {
	var (
		out   domain.StudentEntry
		found bool
		empty bool
	)
	want, supplied := name.Get()
	err := s.cfg.run(ctx, "students.find_by_name", func(ctx context.Context) error {
		return s.store.View(ctx, func(v domain.TransactionView) error {
			entries := v.ListStudents()
			empty = len(entries) == 0
			if !supplied {
				return nil
			}
			for _, entry := range entries {
				if entry.Student.Name == want {
					out, found = entry, true
					return nil
				}
				if s.cfg.lookupMode == LookupFirstEntry {
					return nil
				}
			}
			return nil
		})
	}, attribute.String("lookup.mode", string(s.cfg.lookupMode)))
	if err == nil && empty && s.cfg.lookupMode == LookupFirstEntry {
		// The historical endpoint never reaches its not-found reply here.
		return out, false, domain.ErrNoStudents
	}
	return out, found, err
}

// Create inserts st under id. An occupied key yields ErrStudentExists.
func (s *StudentService) Create(ctx context.Context, id int, st domain.Student) (domain.Student, error) {
	var created domain.Student
	err := s.cfg.run(ctx, "students.create", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateStudent(id, st)
			return err
		})
		return err
	}, attribute.Int("student.id", id))
	if err != nil {
		return domain.Student{}, err
	}
	s.cfg.logger.Info().Int("student_id", id).Msg("student created")
	return created, nil
}

// Update applies patch to the student under id according to the configured
// update mode. A missing key yields ErrStudentNotFound.
func (s *StudentService) Update(ctx context.Context, id int, patch domain.StudentPatch) (domain.Student, error) {
	var updated domain.Student
	err := s.cfg.run(ctx, "students.update", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			switch s.cfg.updateMode {
			case UpdateReplace:
				updated, err = tx.ReplaceStudent(id, patch.Replacement())
			case UpdateMerge, "":
				updated, err = tx.UpdateStudent(id, func(st *domain.Student) error {
					patch.Apply(st)
					return nil
				})
			default:
				err = fmt.Errorf("unknown update mode %q", s.cfg.updateMode)
			}
			return err
		})
		return err
	}, attribute.Int("student.id", id), attribute.String("update.mode", string(s.cfg.updateMode)))
	if err != nil {
		return domain.Student{}, err
	}
	s.cfg.logger.Info().Int("student_id", id).Str("mode", string(s.cfg.updateMode)).Msg("student updated")
	return updated, nil
}

// Delete removes the student under id. A missing key yields ErrStudentNotFound.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	err := s.cfg.run(ctx, "students.delete", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteStudent(id)
		})
		return err
	}, attribute.Int("student.id", id))
	if err != nil {
		return err
	}
	s.cfg.logger.Info().Int("student_id", id).Msg("student deleted")
	return nil
}
