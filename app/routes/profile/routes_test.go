package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileAPI(t *testing.T) {
	store := database.NewMemoryStore()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateClient(context.Background(), &models.Client{
		FullName: "Иванов", Phone: "87001234567", PaymentAmount: "5000", CreatedAt: now.Add(-time.Hour),
	}))

	ledger := services.NewLedger(store, services.NewFeed(store, nil), services.NewDeleteScheduler(store, 0, nil), time.UTC, nil)
	ledger.Now = func() time.Time { return now }
	tokens := auth.NewTokens("test-secret")
	app := fiber.New()
	SetupProfileRoutes(app, auth.NewHandler(store, tokens, nil), &Handler{Ledger: ledger})

	call := func(role models.Role, method, path string) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		token, err := tokens.GenerateJWT(models.Session{UID: "1", Email: "x@example.com", Role: role})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := call(models.RoleAdmin, http.MethodGet, "/api/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		CurrentDebt string `json:"currentDebt"`
		History     []struct {
			Date string `json:"date"`
			Debt string `json:"debt"`
		} `json:"history"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "5000", view.CurrentDebt)
	require.Len(t, view.History, 1)
	assert.Equal(t, "2024-03-10", view.History[0].Date)

	resp = call(models.RoleAdmin, http.MethodGet, "/api/profile/export")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	assert.Equal(t, http.StatusForbidden, call(models.RoleUser, http.MethodDelete, "/api/profile/history").StatusCode)
	assert.Equal(t, http.StatusOK, call(models.RoleAdmin, http.MethodDelete, "/api/profile/history").StatusCode)

	snaps, err := store.ListProfitSnapshots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
