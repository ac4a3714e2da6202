package query

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	fields, err := ParseOrder([]string{"like_count_DESC", "id_ASC"})
	require.NoError(t, err)
	assert.Equal(t, []OrderField{
		{Column: "like_count", Direction: DESC},
		{Column: "id", Direction: ASC},
	}, fields)

	// Sin orden se usa el de por defecto
	fields, err = ParseOrder(nil)
	require.NoError(t, err)
	assert.Equal(t, []OrderField{{Column: "id", Direction: DESC}}, fields)
}

func TestParseOrder_Errors(t *testing.T) {
	cases := map[string]struct {
		order []string
		want  error
	}{
		"direccion invalida": {[]string{"id_SIDEWAYS"}, ErrInvalidOrderDirection},
		"minusculas":         {[]string{"id_desc"}, ErrInvalidOrderDirection},
		"sin sufijo":         {[]string{"id"}, ErrInvalidOrderDirection},
		"columna vacia":      {[]string{"_DESC"}, ErrInvalidOrderColumn},
		"inyeccion":          {[]string{"id;DROP TABLE movies_DESC"}, ErrInvalidOrderColumn},
		"columna repetida":   {[]string{"id_DESC", "id_ASC"}, ErrInvalidOrderColumn},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOrder(tc.order)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	original := Cursor{
		Values: map[string]any{
			"id":         int64(27),
			"title":      "Matrix",
			"score":      4.5,
			"rating":     3.0,
			"created_at": FormatTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
		},
		Order: []string{"score_DESC", "rating_DESC", "title_DESC", "created_at_DESC", "id_DESC"},
	}

	token, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, original, *decoded)
	assert.IsType(t, float64(0), decoded.Values["rating"], "un float entero sigue siendo float")
}

func TestDecodeCursor_AcceptsPaddedStandardBase64(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte(`{"values":{"id":27},"order":["id_DESC"]}`))

	c, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"id_DESC"}, c.Order)
	assert.Equal(t, int64(27), c.Values["id"])
}

func TestDecodeCursor_Malformed(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	cases := map[string]string{
		"no base64":          "***not-base64***",
		"no json":            enc("hello"),
		"orden vacio":        enc(`{"values":{},"order":[]}`),
		"direccion invalida": enc(`{"values":{"id":1},"order":["id_UP"]}`),
		"falta valor":        enc(`{"values":{"title":"x"},"order":["id_DESC"]}`),
		"valores de mas":     enc(`{"values":{"id":1,"title":"x"},"order":["id_DESC"]}`),
		"valor no escalar":   enc(`{"values":{"id":{"a":1}},"order":["id_DESC"]}`),
		"basura final":       enc(`{"values":{"id":27},"order":["id_DESC"]} trailing-junk`),
		"dos objetos":        enc(`{"values":{"id":27},"order":["id_DESC"]}{}`),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCursor(token)
			assert.ErrorIs(t, err, ErrMalformedCursor)
		})
	}
}

func TestGenerateNextCursor(t *testing.T) {
	order := []OrderField{{Column: "id", Direction: DESC}}

	// Sin filas no hay cursor
	next, err := GenerateNextCursor([]fakeRow{}, order)
	require.NoError(t, err)
	assert.Nil(t, next)

	rows := []fakeRow{{ID: 5, Title: "e"}, {ID: 4, Title: "d"}}
	next, err = GenerateNextCursor(rows, order)
	require.NoError(t, err)
	require.NotNil(t, next)

	c, err := DecodeCursor(*next)
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.Values["id"])
	assert.Equal(t, []string{"id_DESC"}, c.Order)
}

func TestGenerateNextCursor_UnknownColumn(t *testing.T) {
	_, err := GenerateNextCursor([]fakeRow{{ID: 1}}, []OrderField{{Column: "nope", Direction: ASC}})
	assert.ErrorIs(t, err, ErrUnknownCursorColumn)
}
