package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect aísla las pocas diferencias de SQL entre SQLite y PostgreSQL.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor traduce el valor de DB_DRIVER.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return 0, fmt.Errorf("unsupported db driver %q", driver)
}

// DriverName es el nombre registrado en database/sql.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Rebind convierte los '?' en $1, $2... para PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ILike es el operador de búsqueda insensible a mayúsculas.
// El LIKE de SQLite ya lo es para ASCII.
func (d Dialect) ILike() string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

// Placeholders devuelve "?, ?, ?" para una cláusula IN de n elementos.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
