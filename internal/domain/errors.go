package domain

import "errors"

// Registry errors
var (
	ErrDuplicateRegistration = errors.New("entity type already registered")
	ErrDuplicateTableMapping = errors.New("table already mapped to another entity type")
	ErrNotRegistered         = errors.New("entity type not registered")
	ErrInvalidSpecification  = errors.New("invalid class specification")
)

// Index and repository errors
var (
	ErrIndexConstraintViolation = errors.New("index constraint violation")
	ErrRecordNotFound           = errors.New("record not found")
	ErrInvalidIdentifier        = errors.New("invalid identifier")
)

// Query builder errors
var (
	ErrNoActiveIncludePath = errors.New("thenInclude called without a preceding include")
	ErrUnknownIncludeKey   = errors.New("include key is not a relational property")
)
