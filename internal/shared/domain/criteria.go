package domain

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq    Operator = "="
	OpNeq   Operator = "<>"
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE" // cada adapter lo traduce a su dialecto
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado.
// Field es el nombre de columna sin alias.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

// CompositeCriteria solo combina con AND: ningún listado necesita OR.
type CompositeCriteria struct {
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// And crea un CompositeCriteria
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Criterias: criterias}
}

// ContainsCriteria busca un texto dentro de una columna, sin distinguir mayúsculas.
type ContainsCriteria struct {
	Field string
	Text  string
}

func (c ContainsCriteria) ToConditions() []Criterion {
	if c.Text == "" {
		return nil
	}
	return []Criterion{{Field: c.Field, Op: OpILike, Value: "%" + c.Text + "%"}}
}
