package tracker

import "errors"

// ErrTableCreation indicates the schema_migrations table could not be created.
var ErrTableCreation = errors.New("creating schema_migrations table")

// ErrAppliedSetUnavailable indicates the applied set could not be loaded,
// so no skip decision can be trusted.
var ErrAppliedSetUnavailable = errors.New("loading applied migrations")
