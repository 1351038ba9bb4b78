package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers map onto the HTTP error taxonomy.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrTicketTypeNotFound    = errors.New("ticket type not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrNoTickets             = errors.New("no tickets have been sold for this event")
	ErrNoTicketTypes         = errors.New("event has no ticket types")
	ErrEventHasActiveTickets = errors.New("event has active tickets")
	ErrTicketTypeHasTickets  = errors.New("ticket type has settled tickets")
	ErrEmailNotConfigured    = errors.New("email is not configured")
	ErrLogoUploadFailed      = errors.New("logo upload failed")
)

// FieldError is a validation failure on a single input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field validation failures. Operations
// return it before touching any state.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation failed: %s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

// Add appends a field failure
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Validation builds a single-field validation error
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// EmailSendError carries the collaborator's message up to the caller
type EmailSendError struct {
	Err error
}

func (e *EmailSendError) Error() string {
	return fmt.Sprintf("failed to send email: %v", e.Err)
}

func (e *EmailSendError) Unwrap() error {
	return e.Err
}
