package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ---------- Ordenamiento ----------

// Direction es la dirección de un criterio de orden.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

var (
	ErrInvalidOrderDirection = errors.New("order direction must be ASC or DESC")
	ErrInvalidOrderColumn    = errors.New("order column is not a valid identifier")
)

// DefaultOrder se aplica cuando la petición no trae orden.
var DefaultOrder = []string{"id_DESC"}

// Solo identificadores planos: la columna acaba interpolada en el SQL.
var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OrderField es un par columna + dirección, ej. "like_count_DESC".
type OrderField struct {
	Column    string
	Direction Direction
}

func (o OrderField) String() string {
	return o.Column + "_" + string(o.Direction)
}

// Comparator devuelve el operador que avanza en esta dirección.
func (o OrderField) Comparator() string {
	if o.Direction == DESC {
		return "<"
	}
	return ">"
}

// ParseOrderField separa por el ÚLTIMO '_' para admitir columnas snake_case.
// La dirección es sensible a mayúsculas.
func ParseOrderField(raw string) (OrderField, error) {
	i := strings.LastIndex(raw, "_")
	if i < 0 {
		return OrderField{}, fmt.Errorf("%w: %q", ErrInvalidOrderDirection, raw)
	}

	column, dir := raw[:i], Direction(raw[i+1:])
	if dir != ASC && dir != DESC {
		return OrderField{}, fmt.Errorf("%w: %q", ErrInvalidOrderDirection, raw)
	}
	if !columnPattern.MatchString(column) {
		return OrderField{}, fmt.Errorf("%w: %q", ErrInvalidOrderColumn, raw)
	}

	return OrderField{Column: column, Direction: dir}, nil
}

// ParseOrder valida una lista de órdenes en el formato "<columna>_<ASC|DESC>".
// Una lista vacía equivale a DefaultOrder.
func ParseOrder(raw []string) ([]OrderField, error) {
	if len(raw) == 0 {
		raw = DefaultOrder
	}

	fields := make([]OrderField, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		f, err := ParseOrderField(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f.Column]; dup {
			return nil, fmt.Errorf("%w: %q appears twice", ErrInvalidOrderColumn, f.Column)
		}
		seen[f.Column] = struct{}{}
		fields = append(fields, f)
	}
	return fields, nil
}

// FormatOrder es la inversa de ParseOrder.
func FormatOrder(fields []OrderField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.String()
	}
	return out
}

// uniformDirection indica si todas las columnas comparten dirección.
func uniformDirection(fields []OrderField) bool {
	for _, f := range fields {
		if f.Direction != fields[0].Direction {
			return false
		}
	}
	return true
}
