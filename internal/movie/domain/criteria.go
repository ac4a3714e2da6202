package domain

import (
	shared "github.com/davicafu/cinelab/internal/shared/domain"
)

// TitleContainsCriteria busca películas cuyo título contenga el texto, sin
// distinguir mayúsculas. Vacío no filtra.
func TitleContainsCriteria(title string) shared.Criteria {
	return shared.ContainsCriteria{Field: "title", Text: title}
}

// DirectorCriteria filtra por director.
type DirectorCriteria struct {
	ID int64
}

func (c DirectorCriteria) ToConditions() []shared.Criterion {
	if c.ID == 0 {
		return nil
	}
	return []shared.Criterion{{Field: "director_id", Op: shared.OpEq, Value: c.ID}}
}
