package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nhom11/attendance-api/internal/middleware"
	"github.com/nhom11/attendance-api/internal/models"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// idParam parses the named route parameter as a positive integer id.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}
