// Package sqlcheck validates migration scripts with the real PostgreSQL
// parser, without touching a database.
package sqlcheck

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Info describes a parsed migration script.
type Info struct {
	// Statements is the number of top-level SQL statements in the script.
	Statements int
	// NeedsNoTransaction reports whether the script contains a statement
	// that PostgreSQL refuses to run inside a transaction block
	// (CREATE INDEX CONCURRENTLY). Such scripts execute directly on the
	// connection, with per-statement atomicity only.
	NeedsNoTransaction bool
}

// Check parses a script and returns its Info. An empty or whitespace-only
// script yields a zero Info and no error. A syntax error is returned as-is
// from the parser, wrapped with context.
func Check(sql string) (Info, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return Info{}, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return Info{}, fmt.Errorf("parsing SQL: %w", err)
	}

	info := Info{Statements: len(tree.Stmts)}

	for _, stmt := range tree.Stmts {
		node, ok := stmt.Stmt.Node.(*pg_query.Node_IndexStmt)
		if !ok {
			continue
		}

		if node.IndexStmt != nil && node.IndexStmt.Concurrent {
			info.NeedsNoTransaction = true
		}
	}

	return info, nil
}
