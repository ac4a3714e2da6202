package domain

import (
	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
)

// ---------------- Implementaciones concretas ----------------

// Filtrado por rol exacto
type RoleCriteria struct {
	Role Role
}

func (c RoleCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "role", Op: sharedDomain.OpEq, Value: int64(c.Role)}}
}

// Criteria traduce el filtro del listado a condiciones neutrales.
func (f UserFilter) Criteria() sharedDomain.Criteria {
	criterias := []sharedDomain.Criteria{
		sharedDomain.ContainsCriteria{Field: "email", Text: f.Email},
	}
	if f.Role != nil {
		criterias = append(criterias, RoleCriteria{Role: *f.Role})
	}
	return sharedDomain.And(criterias...)
}
