package core

import (
	"fmt"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

// ValidationError rejects malformed or missing input. It never mutates state
// and is always recoverable by resubmitting corrected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError is returned when the requested state change is not
// legal from the current status, including lost-update races where a
// concurrent caller moved the entity first.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from status %q", e.Entity, e.ID, e.Action, e.From)
}

// AllocationConflictError carries the commitment that blocked a bind so the
// caller can pick another resource or window.
type AllocationConflictError struct {
	CollaboratorID string
	SourceKind     string
	SourceID       string
	Date           string
	Start          string
	End            string
}

func (e *AllocationConflictError) Error() string {
	return fmt.Sprintf("collaborator %s already committed by %s %s on %s %s-%s",
		e.CollaboratorID, e.SourceKind, e.SourceID, e.Date, e.Start, e.End)
}

type AuthorizationError struct {
	Role      models.Role
	Operation Operation
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not perform %s", e.Role, e.Operation)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
