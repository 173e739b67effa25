package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nhom11/attendance-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	router.GET("/users/:id", guard, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRBACAllowsRole(t *testing.T) {
	router := rbacRouter(&models.JWTClaims{UserID: 1, Role: models.RoleAdmin}, RBAC(string(models.RoleAdmin)))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/7", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACRejectsRole(t *testing.T) {
	router := rbacRouter(&models.JWTClaims{UserID: 1, Role: models.RoleStudent}, RBAC(string(models.RoleAdmin)))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/7", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACSelfMarkerMatchesOwnID(t *testing.T) {
	router := rbacRouter(&models.JWTClaims{UserID: 7, Role: models.RoleStudent}, RBAC(string(models.RoleAdmin), SelfMarker))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/7", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACSelfMarkerRejectsOtherID(t *testing.T) {
	router := rbacRouter(&models.JWTClaims{UserID: 7, Role: models.RoleStudent}, RBAC(string(models.RoleAdmin), SelfMarker))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/8", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACMissingClaims(t *testing.T) {
	router := rbacRouter(nil, RequireRoles(models.RoleAdmin))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/7", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
