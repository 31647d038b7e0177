package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"restaurant-api/config"
	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/models"
	"restaurant-api/notifier"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	router *gin.Engine
	svc    *services.Services
	auth   *middleware.Auth
	hub    *notifier.Hub
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()

	db, err := config.OpenDB("sqlite", filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hub := notifier.NewHub(16)
	svc := services.New(services.Deps{DB: db, Notifier: hub, Logger: log, AppDomain: "menu.example.com"})
	auth := middleware.NewAuth("test-secret", time.Hour, svc.Users)
	cfg := &config.Config{
		CORSOrigins:     []string{"http://localhost:3000"},
		PublicRateLimit: "1000-M",
	}
	router, err := NewRouter(cfg, handlers.New(svc, auth, hub, log), auth, log)
	require.NoError(t, err)
	return &server{router: router, svc: svc, auth: auth, hub: hub}
}

func (s *server) staff(t *testing.T, email string, role models.UserRole) string {
	t.Helper()
	user, err := s.svc.Users.Create(context.Background(), services.CreateUserInput{
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// submitOrder places an order through the public endpoint
func (s *server) submitOrder(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	table, err := s.svc.Tables.Create(ctx, services.CreateTableInput{Name: "T1"})
	require.NoError(t, err)
	item, err := s.svc.Menu.Create(ctx, services.MenuItemInput{Name: "Pizza", Price: decimal.NewFromInt(12), Category: "Pizza"})
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"tableId":      table.ID,
		"customerName": "Ann",
		"items": []map[string]interface{}{{
			"menuItemId": item.ID, "menuItemName": "Pizza", "quantity": 1, "basePrice": 12, "itemTotal": 12,
		}},
		"totalAmount": 12,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(12), body["totalAmount"])
	return body["id"].(string)
}

func TestClaimOrderOverHTTP(t *testing.T) {
	s := newServer(t)
	first := s.staff(t, "w1@example.com", models.RoleWaiter)
	second := s.staff(t, "w2@example.com", models.RoleWaiter)
	orderID := s.submitOrder(t)

	w := s.do(t, http.MethodPost, "/api/orders/"+orderID+"/claim", first, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	holder := decode(t, w)["claimedBy"]
	require.NotEmpty(t, holder)

	w = s.do(t, http.MethodPost, "/api/orders/"+orderID+"/claim", second, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, holder, decode(t, w)["claimedBy"])

	w = s.do(t, http.MethodPost, "/api/orders/"+orderID+"/release", second, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["claimedBy"])

	w = s.do(t, http.MethodPost, "/api/orders/missing/claim", second, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccessGate(t *testing.T) {
	s := newServer(t)
	chef := s.staff(t, "chef@example.com", models.RoleChef)
	orderID := s.submitOrder(t)

	w := s.do(t, http.MethodPost, "/api/orders/"+orderID+"/claim", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders/"+orderID+"/claim", chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", chef, map[string]string{"status": "preparing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "preparing", decode(t, w)["status"])

	w = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", chef, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/users", chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	s := newServer(t)
	s.staff(t, "admin@example.com", models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "admin@example.com", user["email"])
	assert.Equal(t, true, user["isOnline"])
	assert.NotContains(t, user, "password")

	w = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users, err := s.svc.Users.List(context.Background(), models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, users[0].IsOnline)
}

func TestCallRequestsOverHTTP(t *testing.T) {
	s := newServer(t)
	waiter := s.staff(t, "w@example.com", models.RoleWaiter)
	table, err := s.svc.Tables.Create(context.Background(), services.CreateTableInput{Name: "T9"})
	require.NoError(t, err)

	body := map[string]string{"tableId": table.ID, "customerName": "Bo", "type": "bill"}
	w := s.do(t, http.MethodPost, "/api/call-requests", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	callID := decode(t, w)["id"].(string)
	assert.Equal(t, "T9", decode(t, w)["tableName"])

	w = s.do(t, http.MethodPost, "/api/call-requests", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/call-requests", "", map[string]string{"tableId": table.ID, "customerName": "Bo", "type": "water"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "type")

	w = s.do(t, http.MethodPut, "/api/call-requests/"+callID+"/complete", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/api/call-requests?status=pending", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])
}

func TestPublicReads(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "branding", decode(t, w)["id"])

	w = s.do(t, http.MethodGet, "/api/state-machine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["stateMachine"], 4)

	w = s.do(t, http.MethodGet, "/api/menu-items?isPopular=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventStream(t *testing.T) {
	s := newServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	// dataOf skips frames until the named event and returns its data line
	dataOf := func(event string) string {
		t.Helper()
		timeout := time.After(5 * time.Second)
		found := false
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream ended before %s", event)
				if line == "event:"+event {
					found = true
				} else if found && strings.HasPrefix(line, "data:") {
					return strings.TrimPrefix(line, "data:")
				}
			case <-timeout:
				t.Fatalf("no %s event received", event)
			}
		}
	}

	dataOf("connected")
	assert.Equal(t, 1, s.hub.Subscribers())

	orderID := s.submitOrder(t)
	var frame struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(dataOf("order:new")), &frame))
	assert.Equal(t, "order:new", frame.Event)
	assert.Equal(t, orderID, frame.Payload["id"])
	assert.Equal(t, "pending", frame.Payload["status"])
	assert.Len(t, frame.Payload["items"], 1)

	cancel()
	require.Eventually(t, func() bool { return s.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
