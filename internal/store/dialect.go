package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// rows is the cursor surface shared by database/sql and pgx.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type row interface {
	Scan(dest ...any) error
}

type conn interface {
	query(ctx context.Context, q string, args ...any) (rows, error)
	queryRow(ctx context.Context, q string, args ...any) row
}

// dialect hides the handful of SQL differences between SQLite and PostgreSQL.
// Queries are written with "?" placeholders and rebound per backend.
type dialect struct {
	name       string
	positional bool

	// number renders a column holding comma-decimal text as a numeric expression.
	number func(col string) string
}

var sqliteDialect = dialect{
	name: "sqlite",
	number: func(col string) string {
		return fmt.Sprintf("CAST(TRIM(REPLACE(%s, ',', '.')) AS REAL)", col)
	},
}

// Non numeric text becomes NULL on PostgreSQL instead of failing the cast.
var postgresDialect = dialect{
	name: "postgres",
	number: func(col string) string {
		v := fmt.Sprintf("TRIM(REPLACE(%s, ',', '.'))", col)
		return fmt.Sprintf("(CASE WHEN %s ~ '^[0-9]+([.][0-9]+){0,1}$' THEN CAST(%s AS DOUBLE PRECISION) END)", v, v)
	},
	positional: true,
}

func (d dialect) rebind(q string) string {
	if !d.positional {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
