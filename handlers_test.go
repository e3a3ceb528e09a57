package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, handler http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleRegisterSuccess(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.HandleRegister, "POST", "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"ab12"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "ann@x.com", body["userName"])
	require.Equal(t, "ann@x.com", body["email"])
	require.Equal(t, "Ann", body["name"])
	require.NotContains(t, rec.Body.String(), "ab12")
}

func TestHandleRegisterBadJSON(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.HandleRegister, "POST", "/api/auth/register", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid request", decodeBody(t, rec)["message"])
}

func TestHandleRegisterMissingFields(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.HandleRegister, "POST", "/api/auth/register",
		`{"name":"","email":"ann@x.com","password":"ab12"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid request", decodeBody(t, rec)["message"])
}

func TestHandleRegisterDuplicate(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.HandleRegister, "POST", "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"ab12"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app.HandleRegister, "POST", "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"ab12"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "User with this email already exists", decodeBody(t, rec)["message"])
}

func TestHandleRegisterPasswordPolicy(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.HandleRegister, "POST", "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"ab1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.NotEmpty(t, body["errors"])
}

func TestHandleLoginSuccess(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Register("Ann", "ann@x.com", "ab12")
	require.NoError(t, err)

	rec := doJSON(t, app.HandleLogin, "POST", "/api/auth/login",
		`{"email":"ann@x.com","password":"ab12"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	signed, ok := body["token"].(string)
	require.True(t, ok)
	claims, err := app.Validator.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", claims.Email)
}

func TestHandleLoginUnauthorizedBodiesIdentical(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Register("Ann", "ann@x.com", "ab12")
	require.NoError(t, err)

	wrongPass := doJSON(t, app.HandleLogin, "POST", "/api/auth/login",
		`{"email":"ann@x.com","password":"wrong"}`)
	unknownEmail := doJSON(t, app.HandleLogin, "POST", "/api/auth/login",
		`{"email":"nobody@x.com","password":"ab12"}`)

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())

	body := decodeBody(t, wrongPass)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Invalid Email or Password", body["message"])
}

func TestHandleLoginMissingFields(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.HandleLogin, "POST", "/api/auth/login", `{"email":"","password":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTokenValidate(t *testing.T) {
	app := newTestApp(t)
	user, err := app.Register("Ann", "ann@x.com", "ab12")
	require.NoError(t, err)
	signed, err := app.Login("ann@x.com", "ab12")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	app.HandleTokenValidate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, user.ID, body["userId"])
	require.Equal(t, "ann@x.com", body["email"])
	require.Equal(t, "User", body["role"])
}

func TestHandleTokenValidateRejectsBadTokens(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Register("Ann", "ann@x.com", "ab12")
	require.NoError(t, err)
	signed, err := app.Login("ann@x.com", "ab12")
	require.NoError(t, err)

	// expired/tampered/garbage all come back as the same 401
	tampered := signed[:len(signed)-8] + "AAAAAAAA"
	for _, bad := range []string{"garbage", tampered} {
		req := httptest.NewRequest("GET", "/api/auth/validate?token="+bad, nil)
		rec := httptest.NewRecorder()
		app.HandleTokenValidate(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "token %q", bad)
		body := decodeBody(t, rec)
		require.Equal(t, false, body["success"])
	}
}

func TestHandleTokenValidateRequiresToken(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/auth/validate", nil)
	rec := httptest.NewRecorder()
	app.HandleTokenValidate(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
