package clients

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
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

var msk = time.FixedZone("MSK", 3*60*60)

type testEnv struct {
	app    *fiber.App
	store  *database.MemoryStore
	ledger *services.Ledger
	tokens *auth.Tokens
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWindow(t, time.Hour)
}

// newTestEnvWindow uses fiber's default (mutable) config so handlers must copy
// whatever they keep past the request.
func newTestEnvWindow(t *testing.T, window time.Duration) *testEnv {
	t.Helper()
	store := database.NewMemoryStore()
	deleter := services.NewDeleteScheduler(store, window, nil)
	t.Cleanup(deleter.Stop)

	ledger := services.NewLedger(store, services.NewFeed(store, nil), deleter, msk, nil)
	ledger.Now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, msk) }

	tokens := auth.NewTokens("test-secret")
	app := fiber.New()
	SetupClientRoutes(app, auth.NewHandler(store, tokens, nil), &Handler{Ledger: ledger, Recipients: []string{"Муслим"}})
	return &testEnv{app: app, store: store, ledger: ledger, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := e.tokens.GenerateJWT(models.Session{UID: "u-" + string(role), Email: string(role) + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, role models.Role, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: e.token(t, role)})

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

const ivanov = `{"fullName":"Иванов","phone":"87001234567","paymentAmount":"5000","timing":"today"}`

func TestCreateClientAPI(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, models.RoleUser, http.MethodPost, "/api/clients", ivanov)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "admin@example.com", body["updatedBy"])

	resp, _ = env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", `{"fullName":"","phone":"","paymentAmount":"0"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "fullName")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "paymentAmount")
}

func TestListAndChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	_, created := env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp, body := env.do(t, models.RoleUser, http.MethodGet, "/api/clients?bucket=today", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := body["items"].([]any)
	assert.Len(t, items, 1)

	resp, _ = env.do(t, models.RoleUser, http.MethodPost, "/api/clients/"+id+"/status", `{"status":"rescheduled","comment":" "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, models.RoleUser, http.MethodPost, "/api/clients/"+id+"/status",
		`{"status":"paid","payment":{"amount":"5000","method":"cash"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", body["status"])
	assert.NotEmpty(t, body["paidAt"])

	resp, body = env.do(t, models.RoleUser, http.MethodGet, "/api/clients?bucket=today&status=pending", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ = body["items"].([]any)
	assert.Empty(t, items)

	resp, _ = env.do(t, models.RoleUser, http.MethodPost, "/api/clients/nope/status", `{"status":"paid"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, models.RoleUser, http.MethodGet, "/api/clients?bucket=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteAndRestore(t *testing.T) {
	env := newTestEnv(t)
	_, created := env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)
	id, _ := created["id"].(string)

	resp, _ := env.do(t, models.RoleUser, http.MethodDelete, "/api/clients/"+id, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, models.RoleAdmin, http.MethodDelete, "/api/clients/"+id, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, id, body["id"])

	_, body = env.do(t, models.RoleUser, http.MethodGet, "/api/clients/pending-delete", "")
	assert.Equal(t, true, body["pending"])
	assert.Equal(t, id, body["id"])

	resp, _ = env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients/"+id+"/restore", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients/"+id+"/restore", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, err := env.store.GetClient(context.Background(), id)
	assert.NoError(t, err)
}

func TestExportAPI(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)

	resp, _ := env.do(t, models.RoleUser, http.MethodGet, "/api/clients/export?bucket=today", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxMIME, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestDeleteCommitsWhenWindowExpires(t *testing.T) {
	env := newTestEnvWindow(t, 100*time.Millisecond)
	_, created := env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp, _ := env.do(t, models.RoleAdmin, http.MethodDelete, "/api/clients/"+id, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	_, body := env.do(t, models.RoleUser, http.MethodGet, "/api/clients/pending-delete", "")
	assert.Equal(t, id, body["id"])

	assert.Eventually(t, func() bool {
		_, err := env.store.GetClient(context.Background(), id)
		return errors.Is(err, database.ErrNotFound)
	}, 2*time.Second, 20*time.Millisecond)

	logs, err := env.store.ListDeletions(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ClientID)
	assert.Equal(t, "admin@example.com", logs[0].DeletedBy)

	_, body = env.do(t, models.RoleUser, http.MethodGet, "/api/clients/pending-delete", "")
	assert.Equal(t, false, body["pending"])
}

func TestHistoryBucketIsNotServedHere(t *testing.T) {
	env := newTestEnv(t)
	_, created := env.do(t, models.RoleAdmin, http.MethodPost, "/api/clients", ivanov)
	id, _ := created["id"].(string)
	resp, _ := env.do(t, models.RoleUser, http.MethodPost, "/api/clients/"+id+"/status",
		`{"status":"paid","payment":{"amount":"5000","method":"transfer","transferTo":"Муслим"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, path := range []string{
		"/api/clients?bucket=history",
		"/api/clients/export?bucket=history",
		"/api/clients/stream?bucket=history",
	} {
		for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
			resp, body := env.do(t, role, http.MethodGet, path, "")
			assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
			assert.Nil(t, body["items"], path)
		}
	}
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && event != "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamSendsFilteredSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.CreateClient(ctx, &models.Client{
		ID: "today-1", FullName: "Иванов", PaymentAmount: "5000", CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, msk),
	}))
	require.NoError(t, env.store.CreateClient(ctx, &models.Client{
		ID: "old-1", FullName: "Петров", PaymentAmount: "700", Status: models.StatusNoAnswer, CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, msk),
	}))
	require.NoError(t, env.ledger.Feed.Refresh(ctx))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() {
		env.ledger.Feed.Close()
		_ = env.app.ShutdownWithTimeout(time.Second)
	})

	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/api/clients/stream?bucket=overdue", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: env.token(t, models.RoleUser)})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	ids := func() []string {
		event, data := readEvent(t, r)
		require.Equal(t, "snapshot", event)
		var view services.BucketView
		require.NoError(t, json.Unmarshal([]byte(data), &view))
		assert.Equal(t, models.BucketOverdue, view.Bucket)
		out := make([]string, len(view.Items))
		for i, item := range view.Items {
			out[i] = item.ID
		}
		return out
	}
	assert.Equal(t, []string{"old-1"}, ids())

	require.NoError(t, env.store.CreateClient(ctx, &models.Client{
		ID: "old-2", FullName: "Сидоров", PaymentAmount: "300", CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, msk),
	}))
	require.NoError(t, env.ledger.Feed.Refresh(ctx))
	assert.ElementsMatch(t, []string{"old-1", "old-2"}, ids())
}
