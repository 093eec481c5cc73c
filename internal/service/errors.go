package service

import (
	"errors"
	"fmt"

	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/repository"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when the acting user may not perform an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a unique value is already taken
	ErrConflict = errors.New("resource conflict")

	// ErrExternalService is returned when a collaborator such as the advisor fails
	ErrExternalService = errors.New("external service failure")
)

// PermissionError is a policy denial. It matches ErrPermissionDenied.
type PermissionError struct {
	Capability string
	Reason     string
}

func (e *PermissionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("permission denied: %s", e.Capability)
	}
	return fmt.Sprintf("permission denied: %s: %s", e.Capability, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// ValidationError names the offending field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// check turns a negative decision into a PermissionError
func check(capability string, d policy.Decision) error {
	if d.Allowed {
		return nil
	}
	return &PermissionError{Capability: capability, Reason: d.Reason}
}

// notFound maps repository misses to ErrNotFound
func notFound(what, id string, err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
