package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/relocation-matcher/internal/types"
)

func decodeLogin(t *testing.T, body []byte) types.LoginResponse {
	t.Helper()
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "",
		`{"display_name":"Aki","email":"aki@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decodeLogin(t, rec.Body.Bytes())
	require.NotNil(t, registered.User)
	assert.Equal(t, "Aki", registered.User.DisplayName)
	assert.False(t, registered.User.IsAdmin)
	assert.NotEmpty(t, registered.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodPost, "/api/auth/login", "", `{"email":"aki@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeLogin(t, rec.Body.Bytes())
	assert.Equal(t, registered.User.ID, login.User.ID)

	rec = env.do(http.MethodGet, "/api/me", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me types.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "aki@example.com", me.Email)
}

func TestAuth_AdminFlag(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "",
		`{"display_name":"Ops","email":"OPS@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeLogin(t, rec.Body.Bytes())
	assert.True(t, resp.User.IsAdmin)

	rec = env.do(http.MethodPost, "/api/admin/properties", resp.Token, `{"title":"x","region":"Nagano","monthly_cost":1}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuth_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	body := `{"display_name":"Aki","email":"aki@example.com","password":"correct-horse"}`

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/auth/register", "", body).Code)
	rec := env.do(http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuth_LoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/auth/register", "",
		`{"display_name":"Aki","email":"aki@example.com","password":"correct-horse"}`).Code)

	wrongPassword := env.do(http.MethodPost, "/api/auth/login", "", `{"email":"aki@example.com","password":"wrong-horse"}`)
	unknownEmail := env.do(http.MethodPost, "/api/auth/login", "", `{"email":"nobody@example.com","password":"correct-horse"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAuth_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "short password", path: "/api/auth/register", body: `{"display_name":"Aki","email":"aki@example.com","password":"short"}`},
		{name: "bad email", path: "/api/auth/register", body: `{"display_name":"Aki","email":"not-an-email","password":"correct-horse"}`},
		{name: "missing name", path: "/api/auth/register", body: `{"email":"aki@example.com","password":"correct-horse"}`},
		{name: "login missing password", path: "/api/auth/login", body: `{"email":"aki@example.com"}`},
		{name: "malformed", path: "/api/auth/login", body: `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMe_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.token(t, "ghost@example.com")

	rec := env.do(http.MethodGet, "/api/me", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractValidationErrors(t *testing.T) {
	req := &types.LoginRequest{Email: "nope"}
	err := requestValidator.Struct(req)
	require.Error(t, err)

	assert.Equal(t, "validation error: Email - email", extractValidationErrors(err))
	assert.Equal(t, "validation error: invalid request", extractValidationErrors(assert.AnError))
}
