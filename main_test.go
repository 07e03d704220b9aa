package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmedkatalov/fowWorkProject/app/config"
	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*app, *config.Config, *database.MemoryStore) {
	t.Helper()
	cfg := config.Default()
	cfg.Store = config.StoreMemory
	cfg.UndoWindow = 0

	store := database.NewMemoryStore()
	a, err := newApp(cfg, store, zap.NewNop())
	require.NoError(t, err)
	return a, cfg, store
}

func cookieFor(t *testing.T, cfg *config.Config, role models.Role) *http.Cookie {
	t.Helper()
	token, err := auth.NewTokens(cfg.JWTSecret).GenerateJWT(models.Session{UID: "1", Email: "a@example.com", Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func TestAPIErrorsAreJSON(t *testing.T) {
	a, cfg, _ := newTestServer(t)

	resp, err := a.http.Test(httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil)
	req.AddCookie(cookieFor(t, cfg, models.RoleUser))
	resp, err = a.http.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 404, body["code"])
}

func TestRootRedirectsToToday(t *testing.T) {
	a, _, _ := newTestServer(t)

	resp, err := a.http.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/today", resp.Header.Get("Location"))
}

func TestLoginPageRenders(t *testing.T) {
	a, _, _ := newTestServer(t)

	resp, err := a.http.Test(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Войти")
}

func TestTodayPageRenders(t *testing.T) {
	a, cfg, store := newTestServer(t)
	require.NoError(t, store.CreateClient(context.Background(), &models.Client{
		FullName: "Иванов", Phone: "87001234567", PaymentAmount: "5000",
	}))

	req := httptest.NewRequest(http.MethodGet, "/today", nil)
	req.AddCookie(cookieFor(t, cfg, models.RoleAdmin))
	resp, err := a.http.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Иванов")
	assert.Contains(t, string(body), "new-client")
}
