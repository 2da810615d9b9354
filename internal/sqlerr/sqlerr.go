// Package sqlerr normalizes database driver errors.
//
// Postgres (pgconn.PgError) and SQLite (sqlite3.Error) failures are mapped
// onto one Code enum, so repositories can react to a unique violation
// without caring which driver raised it, and HandleError can turn whatever
// is left into an *errs.HTTPError.
package sqlerr
