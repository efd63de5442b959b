// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx driver, and maps PostgreSQL errors onto
// store errors. The schema lives in the migrations subpackage.
package postgres
