package postgres

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema aplica el esquema embebido (sentencias idempotentes).
// Sin argumentos pgx usa el protocolo simple, que admite varias sentencias.
func EnsureSchema(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, schemaSQL)
	return classify("ensure schema", err)
}
