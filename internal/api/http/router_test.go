package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxmovies/storefront-client/internal/api/http/handlers"
	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/auth/authtest"
	"github.com/gxmovies/storefront-client/internal/gateway"
	"github.com/gxmovies/storefront-client/internal/notice"
	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/service"
	"github.com/gxmovies/storefront-client/internal/session"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

type reply struct {
	status int
	body   string
}

// backend answers "METHOD /path" keys; anything else is a 404 envelope.
type backend struct {
	mu      sync.Mutex
	replies map[string]reply
}

func (b *backend) set(key string, status int, body string) {
	b.mu.Lock()
	b.replies[key] = reply{status: status, body: body}
	b.mu.Unlock()
}

func (b *backend) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	b.mu.Lock()
	rep, ok := b.replies[r.Method+" "+r.URL.Path]
	b.mu.Unlock()
	if !ok {
		rep = reply{status: nethttp.StatusNotFound, body: `{"success":false,"message":"not found"}`}
	}
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

type touchCounter struct{ n atomic.Int32 }

func (t *touchCounter) Touch() { t.n.Add(1) }

type console struct {
	app      *fiber.App
	backend  *backend
	manager  *session.Manager
	board    *notice.Board
	location *session.Location
	touches  *touchCounter
}

func newConsole(t *testing.T) *console {
	t.Helper()
	be := &backend{replies: map[string]reply{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemory()
	board := notice.NewBoard(nil, true, nil)
	location := session.NewLocation(auth.LoginPath)
	manager := session.NewManager(store, auth.NewDecoder(), nil, nil)
	metrics := observability.NewMetrics()
	inv := session.NewInvalidator(manager, store, board, location, metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = inv.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	pipeline := gateway.New(srv.Client(), gateway.Options{
		Tokens:      store,
		Invalidator: inv,
		RateLimits:  board,
		Metrics:     metrics,
	})
	svc := service.New(service.NewClient(srv.URL+"/api", pipeline, nil))
	manager.SetUserLookup(svc.Users)

	touches := &touchCounter{}
	app := fiber.New()
	RegisterMiddlewares(app, nil, metrics, touches, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("test", "dev", store),
		Session:  handlers.NewSessionHandler(svc.Users, manager, location),
		Notices:  handlers.NewNoticeHandler(board),
		Shopper:  handlers.NewShopperHandler(svc, manager),
		Admin:    handlers.NewAdminHandler(svc),
		Identity: manager,
		Location: location,
		Metrics:  metrics,
	})

	return &console{app: app, backend: be, manager: manager, board: board, location: location, touches: touches}
}

func (c *console) do(t *testing.T, method, path, body string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func (c *console) login(t *testing.T, userID int, role string) {
	t.Helper()
	c.backend.set("POST /api/users/auth/user-login", 200, `{"success":true,"data":"`+authtest.Token(t, userID, role)+`"}`)
	resp, _ := c.do(t, fiber.MethodPost, "/login", `{"email":"a@b.c","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	c.manager.Wait()
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	c := newConsole(t)

	for _, path := range []string{"/user/home", "/user/cart", "/admin/dashboard"} {
		resp, _ := c.do(t, fiber.MethodGet, path, "")
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, auth.LoginPath, resp.Header.Get("Location"), path)
	}
}

func TestLoginThenRoleGuards(t *testing.T) {
	c := newConsole(t)
	c.backend.set("GET /api/users/7", 200, `{"success":true,"data":{"userId":7,"fullName":"Ada Lovelace"}}`)
	c.backend.set("GET /api/movies/all/available", 200, `{"success":true,"data":[{"movieId":1,"title":"Heat"}]}`)
	c.login(t, 7, "USER")

	resp, body := c.do(t, fiber.MethodGet, "/user/home", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "home", body["view"])
	assert.Equal(t, "/user/home", c.location.Current())

	resp, _ = c.do(t, fiber.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, auth.ForbiddenPath, resp.Header.Get("Location"))

	_, body = c.do(t, fiber.MethodGet, "/session", "")
	data := body["data"].(map[string]any)
	assert.Equal(t, "Ada Lovelace", data["display_name"])
	assert.Equal(t, "7", data["identity"].(map[string]any)["subject_id"])
}

func TestAdminLoginReachesDashboard(t *testing.T) {
	c := newConsole(t)
	c.backend.set("POST /api/users/auth/admin-login", 200, `{"success":true,"data":"`+authtest.Token(t, 1, "ADMIN")+`"}`)
	c.backend.set("GET /api/admin/summary", 200, `{"success":true,"data":{"numberOfUsers":3,"numberOfMovies":2,"totalRevenue":10}}`)
	c.backend.set("GET /api/admin/chart", 200, `{"success":true,"data":{"series":[["Drama",2]]}}`)

	resp, body := c.do(t, fiber.MethodPost, "/admin/login", `{"email":"root@b.c","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", body["redirect"])

	resp, body = c.do(t, fiber.MethodGet, "/admin/dashboard", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "moviesByGenre", data["chart_type"])

	resp, _ = c.do(t, fiber.MethodGet, "/user/home", "")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, auth.ForbiddenPath, resp.Header.Get("Location"))
}

func TestFailedLoginShowsBackendMessage(t *testing.T) {
	c := newConsole(t)
	c.backend.set("POST /api/users/auth/user-login", 401, `{"success":false,"message":"Invalid credentials"}`)

	resp, body := c.do(t, fiber.MethodPost, "/login", `{"email":"a@b.c","password":"bad"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UPSTREAM_ERROR", errBody["code"])
	assert.Equal(t, "Invalid credentials", errBody["message"])
	assert.Nil(t, c.manager.Identity())
}

func TestLoginValidation(t *testing.T) {
	c := newConsole(t)
	resp, body := c.do(t, fiber.MethodPost, "/login", `{"email":""}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
}

func TestServerUnauthorizedForcesLogout(t *testing.T) {
	c := newConsole(t)
	c.login(t, 7, "USER")
	c.backend.set("GET /api/carts/user/7", 401, `{"success":false,"message":"Account blocked"}`)

	resp, body := c.do(t, fiber.MethodGet, "/user/cart", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_INVALIDATED", body["error"].(map[string]any)["code"])

	require.Eventually(t, func() bool {
		return c.manager.Identity() == nil && c.location.Current() == auth.LoginPath
	}, time.Second, 5*time.Millisecond)

	resp, _ = c.do(t, fiber.MethodGet, "/user/cart", "")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	_, body = c.do(t, fiber.MethodGet, "/notices", "")
	notices := body["data"].(map[string]any)["notices"].([]any)
	require.Len(t, notices, 1)
	assert.Equal(t, session.BlockedTitle, notices[0].(map[string]any)["title"])
}

func TestRateLimitRaisesToastAndKeepsSession(t *testing.T) {
	c := newConsole(t)
	c.login(t, 7, "USER")
	c.backend.set("GET /api/movies/all/available", 429, "Too many requests")

	resp, body := c.do(t, fiber.MethodGet, "/user/home", "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "RATE_LIMITED", errBody["code"])
	assert.Equal(t, "Too many requests", errBody["message"])

	notices := c.board.List()
	require.Len(t, notices, 1)
	assert.Equal(t, "Too many requests", notices[0].Message)
	assert.Equal(t, notice.KindToast, notices[0].Kind)
	assert.NotNil(t, c.manager.Identity())
}

func TestCheckoutBuysCartAndClearsIt(t *testing.T) {
	c := newConsole(t)
	c.login(t, 7, "USER")
	c.backend.set("GET /api/carts/user/7", 200, `{"success":true,"data":[{"cartId":1,"movieId":3,"movieDTO":{"movieId":3,"price":4.5}},{"cartId":2,"movieId":4,"movieDTO":{"movieId":4,"price":5.5}}]}`)
	c.backend.set("POST /api/purchases", 200, `{"success":true,"data":{"purchaseId":9,"transactionId":"tx-9","totalPrice":10}}`)
	c.backend.set("DELETE /api/carts/user/7/clear", 200, `{"success":true,"message":"cleared"}`)

	resp, body := c.do(t, fiber.MethodPost, "/user/checkout", `{"paymentMethod":"CARD"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/user/orders", body["redirect"])
	assert.Equal(t, "tx-9", body["data"].(map[string]any)["transactionId"])
}

func TestInvoiceDownload(t *testing.T) {
	c := newConsole(t)
	c.login(t, 7, "USER")
	c.backend.set("GET /api/purchases/invoice/9", 200, "%PDF-1.7")

	req := httptest.NewRequest(fiber.MethodGet, "/user/orders/9/invoice?transactionId=tx-9", nil)
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice_tx-9.pdf")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.7", string(raw))
}

func TestInvalidParamIsValidationError(t *testing.T) {
	c := newConsole(t)
	c.login(t, 7, "USER")

	resp, body := c.do(t, fiber.MethodGet, "/movies/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
}

func TestUnknownPathAndActivity(t *testing.T) {
	c := newConsole(t)

	resp, body := c.do(t, fiber.MethodGet, "/nope", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not-found", body["view"])

	c.do(t, fiber.MethodGet, "/health/live", "")
	assert.Equal(t, int32(2), c.touches.n.Load())
}

func TestAckUnknownNotice(t *testing.T) {
	c := newConsole(t)
	resp, body := c.do(t, fiber.MethodPost, "/notices/missing/ack", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestLogout(t *testing.T) {
	c := newConsole(t)
	c.login(t, 7, "USER")

	resp, body := c.do(t, fiber.MethodPost, "/logout", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, auth.LoginPath, body["redirect"])
	assert.Nil(t, c.manager.Identity())

	resp, _ = c.do(t, fiber.MethodPost, "/logout", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	c := newConsole(t)
	resp, _ := c.do(t, fiber.MethodGet, "/metrics", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
