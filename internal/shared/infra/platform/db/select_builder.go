package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// Queryer lo cumplen *sql.DB y *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RowScanner mapea la fila actual a la entidad.
type RowScanner[T any] func(rows *sql.Rows) (T, error)

// SelectBuilder implementa query.QueryBuilder sobre database/sql.
//
//	b := NewSelectBuilder(db, SQLite, "SELECT m.id, m.title FROM movies m", "m", scanMovie)
//	page, err := query.Paginate[Movie](ctx, b, req)
type SelectBuilder[T sharedQuery.Row] struct {
	q       Queryer
	dialect Dialect
	base    string
	alias   string
	where   []string
	args    []any
	orderBy []string
	limit   int
	scan    RowScanner[T]
}

var _ sharedQuery.QueryBuilder[sharedQuery.Row] = (*SelectBuilder[sharedQuery.Row])(nil)

func NewSelectBuilder[T sharedQuery.Row](q Queryer, dialect Dialect, base, alias string, scan RowScanner[T]) *SelectBuilder[T] {
	return &SelectBuilder[T]{q: q, dialect: dialect, base: base, alias: alias, scan: scan}
}

func (b *SelectBuilder[T]) Alias() string { return b.alias }

func (b *SelectBuilder[T]) AddCondition(fragment string, params ...any) {
	b.where = append(b.where, fragment)
	b.args = append(b.args, params...)
}

// AddOrderBy fija el criterio principal, descartando los anteriores.
func (b *SelectBuilder[T]) AddOrderBy(column string, dir sharedQuery.Direction) {
	b.orderBy = []string{column + " " + string(dir)}
}

func (b *SelectBuilder[T]) AddSecondaryOrderBy(column string, dir sharedQuery.Direction) {
	b.orderBy = append(b.orderBy, column+" "+string(dir))
}

func (b *SelectBuilder[T]) SetLimit(n int) { b.limit = n }

// Where traduce criterios neutrales del dominio a condiciones AND.
func (b *SelectBuilder[T]) Where(criteria sharedDomain.Criteria) *SelectBuilder[T] {
	if criteria == nil {
		return b
	}
	for _, c := range criteria.ToConditions() {
		op := string(c.Op)
		if c.Op == sharedDomain.OpILike {
			op = b.dialect.ILike()
		}
		b.AddCondition(fmt.Sprintf("%s %s ?", b.qualify(c.Field), op), c.Value)
	}
	return b
}

// SQL devuelve la consulta final ya adaptada al dialecto.
func (b *SelectBuilder[T]) SQL() (string, []any) {
	var sb strings.Builder
	sb.WriteString(b.base)

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	args := append([]any(nil), b.args...)
	if b.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}

	return b.dialect.Rebind(sb.String()), args
}

func (b *SelectBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	query, args := b.SQL()

	rows, err := b.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := b.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (b *SelectBuilder[T]) qualify(field string) string {
	if b.alias == "" || strings.Contains(field, ".") {
		return field
	}
	return b.alias + "." + field
}
