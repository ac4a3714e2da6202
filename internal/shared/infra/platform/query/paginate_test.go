package query

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	ID    int64
	Title string
}

func (r fakeRow) CursorValue(column string) (any, bool) {
	switch column {
	case "id":
		return r.ID, true
	case "title":
		return r.Title, true
	}
	return nil, false
}

type orderCall struct {
	column string
	dir    Direction
}

// fakeBuilder registra lo que el paginador le pide y lo aplica sobre un slice.
// Solo entiende condiciones sobre "f.id", suficiente para estos tests.
type fakeBuilder struct {
	rows       []fakeRow
	conditions []string
	params     [][]any
	orders     []orderCall
	limit      int
	executed   bool
	execErr    error
}

func (b *fakeBuilder) Alias() string { return "f" }

func (b *fakeBuilder) AddCondition(fragment string, params ...any) {
	b.conditions = append(b.conditions, fragment)
	b.params = append(b.params, params)
}

func (b *fakeBuilder) AddOrderBy(column string, dir Direction) {
	b.orders = []orderCall{{column, dir}}
}

func (b *fakeBuilder) AddSecondaryOrderBy(column string, dir Direction) {
	b.orders = append(b.orders, orderCall{column, dir})
}

func (b *fakeBuilder) SetLimit(n int) { b.limit = n }

func (b *fakeBuilder) Execute(ctx context.Context) ([]fakeRow, error) {
	b.executed = true
	if b.execErr != nil {
		return nil, b.execErr
	}

	var out []fakeRow
	for _, r := range b.rows {
		keep := true
		for i, cond := range b.conditions {
			id := b.params[i][0].(int64)
			if strings.Contains(cond, "<") {
				keep = keep && r.ID < id
			} else {
				keep = keep && r.ID > id
			}
		}
		if keep {
			out = append(out, r)
		}
	}

	if len(b.orders) > 0 && b.orders[0].column == "f.id" {
		desc := b.orders[0].dir == DESC
		sort.Slice(out, func(i, j int) bool {
			if desc {
				return out[i].ID > out[j].ID
			}
			return out[i].ID < out[j].ID
		})
	}

	if b.limit > 0 && len(out) > b.limit {
		out = out[:b.limit]
	}
	return out, nil
}

func fiveRows() []fakeRow {
	return []fakeRow{{1, "a"}, {2, "b"}, {3, "c"}, {4, "d"}, {5, "e"}}
}

func TestPaginate_FirstPage(t *testing.T) {
	// Arrange
	qb := &fakeBuilder{rows: fiveRows()}

	// Act
	page, err := Paginate[fakeRow](context.Background(), qb, CursorRequest{Order: []string{"id_DESC"}, Take: 2})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []fakeRow{{5, "e"}, {4, "d"}}, page.Data)
	assert.True(t, page.HasNextPage)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, 3, qb.limit, "debe pedir take+1 filas")
	assert.Empty(t, qb.conditions)

	c, err := DecodeCursor(*page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.Values["id"], "el cursor apunta a la última fila conservada")
}

func TestPaginate_LastPage(t *testing.T) {
	first, err := Paginate[fakeRow](context.Background(), &fakeBuilder{rows: fiveRows()}, CursorRequest{Take: 2})
	require.NoError(t, err)

	second, err := Paginate[fakeRow](context.Background(), &fakeBuilder{rows: fiveRows()}, CursorRequest{Cursor: *first.NextCursor, Take: 2})
	require.NoError(t, err)
	assert.Equal(t, []fakeRow{{3, "c"}, {2, "b"}}, second.Data)
	assert.True(t, second.HasNextPage)

	// Cursor situado en la penúltima fila
	last, err := Paginate[fakeRow](context.Background(), &fakeBuilder{rows: fiveRows()}, CursorRequest{Cursor: *second.NextCursor, Take: 2})
	require.NoError(t, err)
	assert.Equal(t, []fakeRow{{1, "a"}}, last.Data)
	assert.False(t, last.HasNextPage)
	assert.Nil(t, last.NextCursor)
}

func TestPaginate_CursorOrderOverridesRequest(t *testing.T) {
	first, err := Paginate[fakeRow](context.Background(), &fakeBuilder{rows: fiveRows()}, CursorRequest{Order: []string{"id_DESC"}, Take: 2})
	require.NoError(t, err)

	qb := &fakeBuilder{rows: fiveRows()}
	page, err := Paginate[fakeRow](context.Background(), qb, CursorRequest{
		Cursor: *first.NextCursor,
		Order:  []string{"title_ASC"},
		Take:   2,
	})

	require.NoError(t, err)
	assert.Equal(t, []orderCall{{"f.id", DESC}}, qb.orders)
	assert.Equal(t, []string{"(f.id) < (?)"}, qb.conditions)
	assert.Equal(t, []fakeRow{{3, "c"}, {2, "b"}}, page.Data)
}

func TestPaginate_CursorIgnoresInvalidRequestOrder(t *testing.T) {
	first, err := Paginate[fakeRow](context.Background(), &fakeBuilder{rows: fiveRows()}, CursorRequest{Take: 2})
	require.NoError(t, err)

	_, err = Paginate[fakeRow](context.Background(), &fakeBuilder{rows: fiveRows()}, CursorRequest{
		Cursor: *first.NextCursor,
		Order:  []string{"id_SIDEWAYS"},
	})
	assert.NoError(t, err)
}

func TestPaginate_InvalidDirection_NoExecution(t *testing.T) {
	qb := &fakeBuilder{rows: fiveRows()}

	_, err := Paginate[fakeRow](context.Background(), qb, CursorRequest{Order: []string{"id_SIDEWAYS"}})

	assert.ErrorIs(t, err, ErrInvalidOrderDirection)
	assert.False(t, qb.executed)
	assert.Empty(t, qb.orders)
	assert.Zero(t, qb.limit)
}

func TestPaginate_MalformedCursor_NoExecution(t *testing.T) {
	for _, token := range []string{"%%%", "aGVsbG8"} { // "aGVsbG8" = "hello"
		qb := &fakeBuilder{rows: fiveRows()}

		_, err := Paginate[fakeRow](context.Background(), qb, CursorRequest{Cursor: token})

		assert.ErrorIs(t, err, ErrMalformedCursor)
		assert.False(t, qb.executed)
		assert.Empty(t, qb.conditions)
	}
}

func TestPaginate_EmptyResult(t *testing.T) {
	page, err := Paginate[fakeRow](context.Background(), &fakeBuilder{}, CursorRequest{})

	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.False(t, page.HasNextPage)
	assert.Nil(t, page.NextCursor)
}

func TestPaginate_ExecutionErrorPropagates(t *testing.T) {
	boom := errors.New("database is locked")
	qb := &fakeBuilder{execErr: boom}

	_, err := Paginate[fakeRow](context.Background(), qb, CursorRequest{Order: []string{"title_ASC"}})

	assert.Same(t, boom, err)
}

func TestPaginate_UnsortableColumn_NoExecution(t *testing.T) {
	// Da igual que quepa o no en una página: se rechaza antes de consultar
	for _, take := range []int{1, 10} {
		qb := &fakeBuilder{rows: fiveRows()}

		_, err := Paginate[fakeRow](context.Background(), qb, CursorRequest{Order: []string{"updated_at_DESC"}, Take: take})

		assert.ErrorIs(t, err, ErrInvalidOrderColumn)
		assert.False(t, qb.executed)
		assert.Empty(t, qb.orders)
		assert.Zero(t, qb.limit)
	}
}

func TestPaginate_CursorWithUnsortableColumn_NoExecution(t *testing.T) {
	token, err := Cursor{Values: map[string]any{"updated_at": "x"}, Order: []string{"updated_at_DESC"}}.Encode()
	require.NoError(t, err)
	qb := &fakeBuilder{rows: fiveRows()}

	_, err = Paginate[fakeRow](context.Background(), qb, CursorRequest{Cursor: token})

	assert.ErrorIs(t, err, ErrMalformedCursor)
	assert.False(t, qb.executed)
	assert.Empty(t, qb.conditions)
}

func TestCursorRequest_Size(t *testing.T) {
	assert.Equal(t, DefaultTake, CursorRequest{}.Size())
	assert.Equal(t, 10, CursorRequest{Take: 10}.Size())
	assert.Equal(t, MaxTake, CursorRequest{Take: 5000}.Size())
}

func TestKeysetCondition(t *testing.T) {
	values := map[string]any{"like_count": int64(3), "id": int64(9)}

	frag, params := keysetCondition("m", []OrderField{{"like_count", DESC}, {"id", DESC}}, values)
	assert.Equal(t, "(m.like_count, m.id) < (?, ?)", frag)
	assert.Equal(t, []any{int64(3), int64(9)}, params)

	frag, params = keysetCondition("m", []OrderField{{"like_count", ASC}, {"id", ASC}}, values)
	assert.Equal(t, "(m.like_count, m.id) > (?, ?)", frag)
	assert.Equal(t, []any{int64(3), int64(9)}, params)

	// Direcciones mezcladas: cadena OR por columna
	frag, params = keysetCondition("m", []OrderField{{"like_count", DESC}, {"id", ASC}}, values)
	assert.Equal(t, "((m.like_count < ?) OR (m.like_count = ? AND m.id > ?))", frag)
	assert.Equal(t, []any{int64(3), int64(3), int64(9)}, params)
}
