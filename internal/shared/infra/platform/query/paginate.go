package query

import (
	"context"
	"fmt"
	"strings"
)

// ---------- Paginación por cursor ----------

const (
	DefaultTake = 2
	MaxTake     = 100
)

// QueryBuilder es el colaborador que traduce la paginación a la consulta concreta.
// Los fragmentos usan '?' como placeholder; cada adapter los adapta a su dialecto.
type QueryBuilder[T Row] interface {
	Alias() string
	AddCondition(fragment string, params ...any)
	AddOrderBy(column string, dir Direction)
	AddSecondaryOrderBy(column string, dir Direction)
	SetLimit(n int)
	Execute(ctx context.Context) ([]T, error)
}

// CursorRequest es la petición de página tal como llega del cliente.
type CursorRequest struct {
	Cursor string   `form:"cursor" json:"cursor,omitempty"`
	Order  []string `form:"order" json:"order,omitempty"`
	Take   int      `form:"take" json:"take,omitempty" binding:"omitempty,gte=0"`
}

// Size devuelve el tamaño de página efectivo.
func (r CursorRequest) Size() int {
	switch {
	case r.Take <= 0:
		return DefaultTake
	case r.Take > MaxTake:
		return MaxTake
	default:
		return r.Take
	}
}

// Page es la respuesta paginada.
type Page[T any] struct {
	Data        []T     `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ApplyCursor valida la petición y la vuelca sobre qb: condición keyset, ORDER BY y
// límite take+1. Devuelve el orden efectivo y el tamaño de página.
//
// Si hay cursor, su orden embebido sustituye al de la petición.
// Nada toca qb hasta que la petición es válida.
func ApplyCursor[T Row](qb QueryBuilder[T], req CursorRequest) ([]OrderField, int, error) {
	var (
		order  []OrderField
		values map[string]any
		err    error
	)

	if req.Cursor != "" {
		c, decErr := DecodeCursor(req.Cursor)
		if decErr != nil {
			return nil, 0, decErr
		}
		// DecodeCursor ya validó el orden
		order, _ = c.Fields()
		if err := checkColumns[T](order); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
		}
		values = c.Values
	} else {
		order, err = ParseOrder(req.Order)
		if err != nil {
			return nil, 0, err
		}
		if err := checkColumns[T](order); err != nil {
			return nil, 0, err
		}
	}

	alias := qb.Alias()
	if values != nil {
		fragment, params := keysetCondition(alias, order, values)
		qb.AddCondition(fragment, params...)
	}

	for i, f := range order {
		col := qualify(alias, f.Column)
		if i == 0 {
			qb.AddOrderBy(col, f.Direction)
		} else {
			qb.AddSecondaryOrderBy(col, f.Direction)
		}
	}

	take := req.Size()
	qb.SetLimit(take + 1) // una fila de más para saber si hay siguiente página

	return order, take, nil
}

// Paginate aplica la petición, ejecuta la consulta y arma la página.
// El cursor siguiente sale de la última fila CONSERVADA, nunca de la fila de lookahead.
func Paginate[T Row](ctx context.Context, qb QueryBuilder[T], req CursorRequest) (*Page[T], error) {
	order, take, err := ApplyCursor(qb, req)
	if err != nil {
		return nil, err
	}

	rows, err := qb.Execute(ctx)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Data: rows}
	if len(rows) > take {
		page.HasNextPage = true
		page.Data = rows[:take]

		page.NextCursor, err = GenerateNextCursor(page.Data, order)
		if err != nil {
			return nil, err
		}
	}
	if page.Data == nil {
		page.Data = []T{}
	}

	return page, nil
}

// checkColumns exige que cada columna del orden se pueda leer de la fila, si no
// el cursor siguiente no podría construirse. T debe ser un tipo valor.
func checkColumns[T Row](order []OrderField) error {
	var zero T
	if any(zero) == nil {
		return nil
	}
	for _, f := range order {
		if _, ok := zero.CursorValue(f.Column); !ok {
			return fmt.Errorf("%w: %q is not sortable", ErrInvalidOrderColumn, f.Column)
		}
	}
	return nil
}

// keysetCondition arma la condición "después de la fila del cursor".
//
// Con una sola dirección: (a.c1, a.c2) < (?, ?).
// Con direcciones mezcladas la tupla no sirve y se expande:
// (c1 < ?) OR (c1 = ? AND c2 > ?) OR ...
func keysetCondition(alias string, order []OrderField, values map[string]any) (string, []any) {
	if uniformDirection(order) {
		cols := make([]string, len(order))
		marks := make([]string, len(order))
		params := make([]any, len(order))
		for i, f := range order {
			cols[i] = qualify(alias, f.Column)
			marks[i] = "?"
			params[i] = values[f.Column]
		}
		return fmt.Sprintf("(%s) %s (%s)",
			strings.Join(cols, ", "), order[0].Comparator(), strings.Join(marks, ", ")), params
	}

	var (
		branches []string
		params   []any
	)
	for i, f := range order {
		var parts []string
		for _, prev := range order[:i] {
			parts = append(parts, qualify(alias, prev.Column)+" = ?")
			params = append(params, values[prev.Column])
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", qualify(alias, f.Column), f.Comparator()))
		params = append(params, values[f.Column])
		branches = append(branches, "("+strings.Join(parts, " AND ")+")")
	}
	return "(" + strings.Join(branches, " OR ") + ")", params
}

func qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}
