package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rbac-service/internal/authz"
	"rbac-service/internal/bootstrap"
	"rbac-service/internal/model"
	"rbac-service/internal/store"
	"rbac-service/pkg/config"
	"rbac-service/pkg/jwtutil"
)

type gateFixture struct {
	store *store.Store
	auth  *authz.Authenticator
	gate  *Gate
	echo  *echo.Echo
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Application{},
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
	))

	verifier := authz.BcryptVerifier{}
	hash, err := verifier.Hash("secret")
	require.NoError(t, err)
	_, err = bootstrap.EnsureBaseline(context.Background(), db, bootstrap.Params{
		AppSlug:      "mgmt",
		TenantSlug:   "root",
		SuperUser:    "admin",
		PasswordHash: hash,
		SuperRole:    "super",
		Perms:        map[string]string{"x:r": "read x"},
	})
	require.NoError(t, err)

	jwtUtil, err := jwtutil.New(&config.JWTConfig{
		SigningKey:        "test-signing-key",
		Algorithm:         "HS256",
		ExpirationMinutes: 30,
	})
	require.NoError(t, err)

	st := store.New(db)
	auth := authz.New(st, jwtUtil, verifier, "mgmt", "root")
	gate := NewGate(auth, authz.Catalog{"x:r": "read x"})

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		identity := IdentityFromEcho(c)
		require.NotNil(t, identity)
		return c.String(http.StatusOK, identity.User.Name)
	}, gate.Require("x:r"))

	return &gateFixture{store: st, auth: auth, gate: gate, echo: e}
}

func (f *gateFixture) request(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func (f *gateFixture) login(t *testing.T) string {
	t.Helper()
	token, _, err := f.auth.Login(context.Background(), "admin", "secret", nil)
	require.NoError(t, err)
	return token
}

func TestGateAdmitsValidToken(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request("Bearer " + f.login(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestGateRejectsMissingOrMalformedHeader(t *testing.T) {
	f := newGateFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.request("").Code)
	assert.Equal(t, http.StatusUnauthorized, f.request("Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, f.request("Bearer").Code)
	assert.Equal(t, http.StatusUnauthorized, f.request("Bearer not-a-token").Code)
}

func TestGateRejectsRevokedPermission(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	token := f.login(t)

	user, err := f.store.GetUser(ctx, "mgmt", "root", "admin")
	require.NoError(t, err)
	role, err := f.store.GetRole(ctx, "mgmt", "root", "super")
	require.NoError(t, err)
	require.NoError(t, f.store.RemoveRoleFromUser(ctx, "mgmt", "root", user.ID, role.ID))

	// The token is still cryptographically valid, but the live set no longer
	// covers the route's requirement.
	rec := f.request("Bearer " + token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePanicsOnUnknownPermission(t *testing.T) {
	gate := NewGate(nil, authz.Catalog{"x:r": "read x"})

	assert.Panics(t, func() {
		gate.Require("never-cataloged")
	})
	assert.NotPanics(t, func() {
		gate.Require("x:r")
	})
}
