package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConnParams_DSNIncludesWin1252Encoding(t *testing.T) {
	p := ConnParams{Host: "localhost", Port: 5432, Database: "dados_cnpj", User: "cnpj", Password: "secret"}
	dsn := p.dsn("")
	assert.Contains(t, dsn, "client_encoding=WIN1252")
	assert.Contains(t, dsn, "dados_cnpj")
}

func TestConnParams_DSNOverridesDatabase(t *testing.T) {
	p := ConnParams{Host: "localhost", Port: 5432, Database: "dados_cnpj", User: "cnpj", Password: "secret"}
	dsn := p.dsn("postgres")
	assert.Contains(t, dsn, "/postgres?")
}

func TestIsIdempotentPgError_RecognizesKnownCodes(t *testing.T) {
	for _, code := range []string{"42710", "42P16", "42P07"} {
		err := &pgconn.PgError{Code: code}
		assert.True(t, isIdempotentPgError(err), "code %s should be idempotent", code)
	}
}

func TestIsIdempotentPgError_RejectsOtherCodes(t *testing.T) {
	err := &pgconn.PgError{Code: "23505"}
	assert.False(t, isIdempotentPgError(err))
}

func TestIsIdempotentPgError_RejectsNonPgError(t *testing.T) {
	assert.False(t, isIdempotentPgError(assertPlainError{}))
}

type assertPlainError struct{}

func (assertPlainError) Error() string { return "not a pg error" }
