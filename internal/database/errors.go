package database

import "errors"

// ErrInvalidDSN indicates the assembled connection string could not be parsed.
var ErrInvalidDSN = errors.New("invalid database connection string")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")

// ErrLockNotAcquired indicates the run lock is already held by another process.
var ErrLockNotAcquired = errors.New("migration run lock not acquired")
