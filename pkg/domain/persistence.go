package domain

import "context"

// Transaction exposes the student operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateStudent(id int, s Student) (Student, error)
	ReplaceStudent(id int, s Student) (Student, error)
	UpdateStudent(id int, mutator func(*Student) error) (Student, error)
	DeleteStudent(id int) error
	FindStudent(id int) (Student, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	ListStudents() []StudentEntry
	FindStudent(id int) (Student, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetStudent(id int) (Student, bool)
	ListStudents() []StudentEntry
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	ID     int
	Before any
	After  any
}

// EntityType names the kind of record a change applies to.
type EntityType string

// EntityStudent identifies student records.
const EntityStudent EntityType = "student"

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Result summarises the changes committed by a transaction.
type Result struct {
	Changes []Change
}

// Empty reports whether the transaction committed no changes.
func (r Result) Empty() bool { return len(r.Changes) == 0 }
