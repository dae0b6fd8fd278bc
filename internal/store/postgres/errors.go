package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
)

// isIdempotentPgError unwraps a pgconn.PgError and checks its SQLSTATE
// against the recognized idempotent-repair codes (spec.md §4.E, §7).
func isIdempotentPgError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return ingesterr.IsIdempotentPgCode(pgErr.Code)
}
