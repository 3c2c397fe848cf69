// Package memory provides an in-memory implementation of the student
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"

	"mockapi/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Student aliases domain.Student for in-memory persistence operations.
	Student = domain.Student
	// StudentEntry aliases domain.StudentEntry.
	StudentEntry = domain.StudentEntry
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing committed changes.
	Result = domain.Result
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	students map[int]Student
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Students map[int]Student `json:"students"`
}

func newMemoryState() memoryState {
	return memoryState{students: make(map[int]Student)}
}

func (s memoryState) clone() memoryState {
	out := memoryState{students: make(map[int]Student, len(s.students))}
	for k, v := range s.students {
		out.students[k] = v
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{Students: state.clone().students}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Students {
		state.students[k] = v
	}
	return state
}

// SeedSnapshot returns the state every fresh store starts from.
func SeedSnapshot() Snapshot {
	return Snapshot{Students: map[int]Student{domain.SeedStudentID: domain.SeedStudent()}}
}

// Store is the mutex-guarded in-memory student store.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore constructs a store holding the seed record.
func NewStore() *Store {
	return &Store{state: memoryStateFromSnapshot(SeedSnapshot())}
}

// NewEmptyStore constructs a store with no records.
func NewEmptyStore() *Store {
	return &Store{state: newMemoryState()}
}

// ExportState returns a deep copy of the current state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the current state with snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

type transaction struct {
	state   memoryState
	changes []Change
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func listStudents(state *memoryState) []StudentEntry {
	out := make([]StudentEntry, 0, len(state.students))
	for id, st := range state.students {
		out = append(out, StudentEntry{ID: id, Student: st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListStudents returns all students ordered by ascending key.
func (v transactionView) ListStudents() []StudentEntry {
	return listStudents(v.state)
}

// FindStudent looks up a student by key.
func (v transactionView) FindStudent(id int) (Student, bool) {
	st, ok := v.state.students[id]
	return st, ok
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the live state only when fn succeeds.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return Result{}, err
	}
	s.state = tx.state
	return Result{Changes: tx.changes}, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

// GetStudent returns the student stored under id.
func (s *Store) GetStudent(id int) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.students[id]
	return st, ok
}

// ListStudents returns all students ordered by ascending key.
func (s *Store) ListStudents() []StudentEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listStudents(&s.state)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindStudent exposes student lookup within the transaction scope.
func (tx *transaction) FindStudent(id int) (Student, bool) {
	st, ok := tx.state.students[id]
	return st, ok
}

// CreateStudent inserts a student; it fails when the key is taken.
func (tx *transaction) CreateStudent(id int, st Student) (Student, error) {
	if _, exists := tx.state.students[id]; exists {
		return Student{}, domain.ErrStudentExists
	}
	tx.state.students[id] = st
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionCreate, ID: id, After: st})
	return st, nil
}

// ReplaceStudent overwrites an existing student wholesale.
func (tx *transaction) ReplaceStudent(id int, st Student) (Student, error) {
	before, ok := tx.state.students[id]
	if !ok {
		return Student{}, domain.ErrStudentNotFound{ID: id}
	}
	tx.state.students[id] = st
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionUpdate, ID: id, Before: before, After: st})
	return st, nil
}

// UpdateStudent applies mutator to a copy of the stored student.
func (tx *transaction) UpdateStudent(id int, mutator func(*Student) error) (Student, error) {
	before, ok := tx.state.students[id]
	if !ok {
		return Student{}, domain.ErrStudentNotFound{ID: id}
	}
	updated := before
	if err := mutator(&updated); err != nil {
		return Student{}, err
	}
	tx.state.students[id] = updated
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionUpdate, ID: id, Before: before, After: updated})
	return updated, nil
}

// DeleteStudent removes a student.
func (tx *transaction) DeleteStudent(id int) error {
	before, ok := tx.state.students[id]
	if !ok {
		return domain.ErrStudentNotFound{ID: id}
	}
	delete(tx.state.students, id)
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionDelete, ID: id, Before: before})
	return nil
}
