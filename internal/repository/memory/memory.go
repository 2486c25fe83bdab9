// Package memory provides in-memory implementations of the repository
// interfaces. They mirror the Postgres schema's uniqueness rules, including
// the error shape of constraint violations, and back tests and local
// development without a database.
package memory

import "github.com/jackc/pgx/v5/pgconn"

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}
