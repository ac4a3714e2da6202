package utils

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// RegisterValidators añade las etiquetas propias al validador de gin.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("mp4", func(fl validator.FieldLevel) bool {
		return IsMP4Name(fl.Field().String())
	})
}

// IsMP4Name acepta solo un nombre de fichero plano con extensión .mp4.
func IsMP4Name(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".mp4")
}

// CursorQuery son los parámetros de paginación por cursor en la query string.
// order admite repetirse (?order=a&order=b) o ir separado por comas.
type CursorQuery struct {
	Cursor string   `form:"cursor"`
	Order  []string `form:"order"`
	Take   int      `form:"take" binding:"gte=0"`
}

// BindCursorRequest lee cursor, order y take. El orden no se valida aquí:
// si hay cursor, el suyo manda y el de la petición se ignora.
func BindCursorRequest(c *gin.Context) (sharedQuery.CursorRequest, error) {
	var q CursorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return sharedQuery.CursorRequest{}, err
	}

	var order []string
	for _, raw := range q.Order {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				order = append(order, part)
			}
		}
	}
	return sharedQuery.CursorRequest{Cursor: q.Cursor, Order: order, Take: q.Take}, nil
}
