// Package ingesterr classifies the errors the ingestion pipeline can produce.
//
// The taxonomy mirrors spec.md §7: structural errors abort the run,
// per-item errors (parse, per-batch insert, idempotent repair statements)
// are contained by the caller and only logged.
package ingesterr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel categories. Wrap a concrete cause with fmt.Errorf("...: %w", Structural)
// (or Transient) so errors.Is keeps working across layers.
var (
	// Structural marks an error that must abort the run: cannot connect,
	// cannot create schema, local/remote archive-set validation mismatch.
	Structural = errors.New("structural error")

	// Transient marks a retryable condition: download timeouts, connection
	// resets, 5xx responses, 416 Range Not Satisfiable.
	Transient = errors.New("transient error")
)

// WrapStructural wraps err as a Structural failure with operation context.
func WrapStructural(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, Structural, err)
}

// WrapTransient wraps err as a Transient failure with operation context.
func WrapTransient(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, Transient, err)
}

// IsStructural reports whether err (or a wrapped cause) is Structural.
func IsStructural(err error) bool { return errors.Is(err, Structural) }

// IsTransient reports whether err (or a wrapped cause) is Transient.
func IsTransient(err error) bool { return errors.Is(err, Transient) }

// IdempotentCode identifies backend-specific error codes produced when a
// repair-phase statement (add PK, add FK, upsert) is safely re-run.
type IdempotentCode string

const (
	// PgDuplicateObject is Postgres pgcode 42710 (constraint already exists).
	PgDuplicateObject IdempotentCode = "42710"
	// PgMultiplePrimaryKeys is Postgres pgcode 42P16.
	PgMultiplePrimaryKeys IdempotentCode = "42P16"
	// PgRelationAlreadyExists is Postgres pgcode 42P07.
	PgRelationAlreadyExists IdempotentCode = "42P07"
)

// IsIdempotentPgCode reports whether code is one of the recognized
// "already applied" Postgres error codes that patchData/enableForeignKeys
// must swallow rather than abort on.
func IsIdempotentPgCode(code string) bool {
	switch IdempotentCode(code) {
	case PgDuplicateObject, PgMultiplePrimaryKeys, PgRelationAlreadyExists:
		return true
	default:
		return false
	}
}

// IsIdempotentSQLiteDuplicateIndex reports whether err is
// modernc.org/sqlite's "index already exists" failure. SQLite has no
// pgcode-style taxonomy; its driver surfaces this as plain error text,
// so the deferred-PK unique-index creation matches on substring
// instead (spec.md §4.E, §7).
func IsIdempotentSQLiteDuplicateIndex(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists")
}
