package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupAuthApp(users *testutil.MockUserService, extra ...drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(Auth(testutil.TestJWTService(), users))
	for _, mw := range extra {
		app.Use(mw)
	}
	app.Get("/protected", func(c *drift.Context) {
		user := GetCurrentUser(c)
		_ = c.JSON(200, map[string]string{"email": user.Email})
	})
	return app
}

func TestAuth_MissingHeader(t *testing.T) {
	app := setupAuthApp(new(testutil.MockUserService))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	app := setupAuthApp(new(testutil.MockUserService))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	app := setupAuthApp(new(testutil.MockUserService))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_LoadsMirrorUser(t *testing.T) {
	users := new(testutil.MockUserService)
	user := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleMember}
	users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)

	app := setupAuthApp(users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", testutil.AuthHeader(testutil.GenerateTestToken(t, "a@example.com")))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@example.com")
}

func TestAuth_UnknownUser(t *testing.T) {
	users := new(testutil.MockUserService)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, services.ErrUserNotFound)

	app := setupAuthApp(users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", testutil.AuthHeader(testutil.GenerateTestToken(t, "ghost@example.com")))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	users := new(testutil.MockUserService)
	user := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleMember}
	users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)

	app := setupAuthApp(users, RequireRole(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", testutil.AuthHeader(testutil.GenerateTestToken(t, "a@example.com")))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_AdminPassesEveryGate(t *testing.T) {
	users := new(testutil.MockUserService)
	admin := &models.User{ID: uuid.New(), Email: "root@example.com", Role: models.RoleAdmin}
	users.On("GetByEmail", mock.Anything, "root@example.com").Return(admin, nil)

	app := setupAuthApp(users, RequireRole(models.RoleManager))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", testutil.AuthHeader(testutil.GenerateTestToken(t, "root@example.com", "Admin")))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
