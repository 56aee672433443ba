package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securehire/internal/domain/entity"
	"securehire/internal/usecase"
	"securehire/pkg/errors"
	"securehire/pkg/response"
)

type fakeAuthenticator map[string]*entity.IdentityRecord

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*entity.IdentityRecord, error) {
	rec, ok := f[token]
	if !ok {
		return nil, errors.Unauthorized("Invalid or expired token", nil)
	}
	return rec, nil
}

type fakeDirectory map[string]*entity.Profile

func (f fakeDirectory) GetProfile(_ context.Context, _ string, _ entity.Role, authID string) (*entity.Profile, error) {
	p, ok := f[authID]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return p, nil
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"uid": UserID(c), "role": string(UserRole(c))})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newAuth() *AuthMiddleware {
	return NewAuthMiddleware(fakeAuthenticator{
		"company-token": {ID: "co", Role: entity.RoleCompany},
		"seeker-token":  {ID: "js", Role: entity.RoleJobSeeker},
	})
}

func TestAuthenticate(t *testing.T) {
	e := echo.New()
	h := newAuth().Authenticate(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer company-token")
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"co","role":"company"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ws?token=seeker-token", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.JSONEq(t, `{"uid":"js","role":"jobseeker"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token company-token")
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	h := newAuth().Authenticate(RequireRole(entity.RoleCompany)(ok))

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer seeker-token")
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errors.CodeForbidden, decode(t, rec).Error.Code)
}

func TestRequireCompleteProfile(t *testing.T) {
	e := echo.New()
	gate := usecase.NewProfileGate(fakeDirectory{
		"co": {AuthID: "co", Role: entity.RoleCompany, Company: &entity.CompanyProfile{CompanyName: "Sentinel"}},
	}, nil)
	called := false
	h := newAuth().Authenticate(NewProfileGateMiddleware(gate).RequireCompleteProfile(func(c echo.Context) error {
		called = true
		return ok(c)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer company-token")
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.False(t, called)
	body := decode(t, rec)
	assert.Equal(t, errors.CodeProfileIncomplete, body.Error.Code)
	assert.Contains(t, body.Error.Details, "missing_fields")
}
