package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Student is a stored student record.
type Student struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
	Year string `json:"year"`
}

// UnmarshalJSON accepts the legacy "class" key as an alias of "year". A
// supplied "year" wins even when empty.
func (s *Student) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name  string  `json:"name"`
		Age   int     `json:"age"`
		Year  *string `json:"year"`
		Class *string `json:"class"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Student{Name: aux.Name, Age: aux.Age}
	switch {
	case aux.Year != nil:
		s.Year = *aux.Year
	case aux.Class != nil:
		s.Year = *aux.Class
	}
	return nil
}

// StudentEntry pairs a student with its store key.
type StudentEntry struct {
	ID      int     `json:"id"`
	Student Student `json:"student"`
}

// SeedStudentID is the key of the record every fresh store starts with.
const SeedStudentID = 1

// SeedStudent returns the record every fresh store starts with.
func SeedStudent() Student {
	return Student{Name: "Shlok", Age: 22, Year: "2nd year"}
}

// StudentPatch carries a partial update. Fields that were not supplied are
// left untouched by Apply.
type StudentPatch struct {
	Name Optional[string] `json:"name"`
	Age  Optional[int]    `json:"age"`
	Year Optional[string] `json:"year"`
}

// UnmarshalJSON accepts the legacy "class" key as an alias of "year". When both
// are supplied "year" wins.
func (p *StudentPatch) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name  Optional[string] `json:"name"`
		Age   Optional[int]    `json:"age"`
		Year  Optional[string] `json:"year"`
		Class Optional[string] `json:"class"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Name = aux.Name
	p.Age = aux.Age
	p.Year = aux.Year
	if !p.Year.Set {
		p.Year = aux.Class
	}
	return nil
}

// Apply merges the supplied fields into s.
func (p StudentPatch) Apply(s *Student) {
	if v, ok := p.Name.Get(); ok {
		s.Name = v
	}
	if v, ok := p.Age.Get(); ok {
		s.Age = v
	}
	if v, ok := p.Year.Get(); ok {
		s.Year = v
	}
}

// Replacement builds the record produced by a wholesale replace: only the
// supplied fields survive, everything else is the zero value.
func (p StudentPatch) Replacement() Student {
	var s Student
	p.Apply(&s)
	return s
}

// ErrNoStudents is returned by lookups that walk the store and find it empty.
var ErrNoStudents = errors.New("student store is empty")

// ErrStudentExists is returned when creating a student under a taken key.
var ErrStudentExists = errors.New("student already exists")

// ErrStudentNotFound is returned when a student key is absent.
type ErrStudentNotFound struct {
	ID int
}

func (e ErrStudentNotFound) Error() string {
	return fmt.Sprintf("student %d not found", e.ID)
}

// IsStudentNotFound reports whether err wraps ErrStudentNotFound.
func IsStudentNotFound(err error) bool {
	var nf ErrStudentNotFound
	return errors.As(err, &nf)
}
