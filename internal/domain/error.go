package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrKeyRevoked         = errors.New("key has been revoked")
	ErrKeyOwnedByOther    = errors.New("key is bound to another user")
	ErrInviteIssuance     = errors.New("invite link issuance failed")
	ErrInvalidExecContext = errors.New("invalid execution context for query")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
