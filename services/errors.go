package services

import "errors"

// Service-level errors handlers translate into HTTP statuses. Owner
// mismatches surface as ErrNotFound so callers cannot probe for documents
// they do not own.
var (
	ErrNotFound           = errors.New("not found or inaccessible")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("wrong password")
)
