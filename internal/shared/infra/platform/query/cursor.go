package query

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ---------- Cursor opaco ----------

var (
	ErrMalformedCursor     = errors.New("malformed cursor")
	ErrUnknownCursorColumn = errors.New("row does not expose cursor column")
)

// TimeLayout es el formato ordenable con el que se guardan y comparan los timestamps.
// Ancho fijo: la comparación lexicográfica coincide con la cronológica.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime normaliza un instante a TimeLayout en UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Row es cualquier fila paginable: expone sus campos por nombre de columna.
type Row interface {
	CursorValue(column string) (any, bool)
}

// Cursor es el contenido lógico del token: orden activo y valores de la última fila.
//
//	{"values":{"id":27},"order":["id_DESC"]}
type Cursor struct {
	Values map[string]any `json:"values"`
	Order  []string       `json:"order"`
}

// Encode serializa el cursor a JSON y lo codifica en base64 URL-safe sin padding.
// Los float siempre llevan parte decimal o exponente para volver como float64.
func (c Cursor) Encode() (string, error) {
	values := make(map[string]any, len(c.Values))
	for k, v := range c.Values {
		switch f := v.(type) {
		case float64:
			values[k] = floatNumber(f)
		case float32:
			values[k] = floatNumber(float64(f))
		default:
			values[k] = v
		}
	}

	data, err := json.Marshal(Cursor{Values: values, Order: c.Order})
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Fields devuelve el orden del cursor ya parseado.
func (c Cursor) Fields() ([]OrderField, error) {
	return ParseOrder(c.Order)
}

// DecodeCursor es la inversa de Encode. Cualquier fallo se reporta como ErrMalformedCursor.
// Acepta también tokens en base64 estándar o con padding.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := decodeBase64(token)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrMalformedCursor)
	}

	var c Cursor
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformedCursor)
	}

	if len(c.Order) == 0 {
		return nil, fmt.Errorf("%w: empty order", ErrMalformedCursor)
	}
	fields, err := c.Fields()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}

	if len(c.Values) != len(fields) {
		return nil, fmt.Errorf("%w: values do not match order", ErrMalformedCursor)
	}
	for _, f := range fields {
		v, ok := c.Values[f.Column]
		if !ok {
			return nil, fmt.Errorf("%w: missing value for %q", ErrMalformedCursor, f.Column)
		}
		scalar, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q %v", ErrMalformedCursor, f.Column, err)
		}
		c.Values[f.Column] = scalar
	}

	return &c, nil
}

// GenerateNextCursor construye el token a partir de la ÚLTIMA fila recibida.
// Devuelve nil si no hay filas.
func GenerateNextCursor[T Row](rows []T, order []OrderField) (*string, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	last := rows[len(rows)-1]
	values := make(map[string]any, len(order))
	for _, f := range order {
		v, ok := last.CursorValue(f.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCursorColumn, f.Column)
		}
		if t, isTime := v.(time.Time); isTime {
			v = FormatTime(t)
		}
		values[f.Column] = v
	}

	token, err := Cursor{Values: values, Order: FormatOrder(order)}.Encode()
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func decodeBase64(token string) ([]byte, error) {
	trimmed := strings.TrimRight(token, "=")
	if raw, err := base64.RawURLEncoding.DecodeString(trimmed); err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(trimmed)
}

func floatNumber(f float64) json.Number {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") { // Inf y NaN los rechaza json.Marshal
		s += ".0"
	}
	return json.Number(s)
}

// normalizeValue deja escalares: un número sin decimales ni exponente es int64,
// el resto float64, así el round-trip conserva el tipo.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			if i, err := val.Int64(); err == nil {
				return i, nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case string, bool, nil:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
