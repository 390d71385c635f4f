package tracker

// createSchemaSQL is the DDL for the schema_migrations bookkeeping table.
// The table and column names are a contract: other tooling queries them,
// so they must not change.
const createSchemaSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    migration_id  VARCHAR(255) PRIMARY KEY,
    applied_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`
