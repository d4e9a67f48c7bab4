package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/erp/procurement/internal/infrastructure/cache"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	r.Register(NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }).
		POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) }).
		DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) }))
	r.Setup()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v2/test/ping", http.StatusOK},
		{http.MethodPost, "/api/v2/test/items", http.StatusCreated},
		{http.MethodDelete, "/api/v2/test/items/1", http.StatusNoContent},
		{http.MethodGet, "/api/v1/test/ping", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test").
		Use(func(c *gin.Context) { c.Header("X-Group", "test") }).
		GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "test", g.Name())
	assert.Equal(t, "/test", g.Prefix())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", w.Header().Get("X-Group"))
}

var testJWTConfig = config.JWTConfig{
	Secret:                "router-test-secret-with-32-characters!",
	Issuer:                "procurement",
	AccessTokenExpiration: time.Hour,
}

// stubQuickEntry counts calls and fails for anonymous requesters
type stubQuickEntry struct {
	calls atomic.Int32
}

func (s *stubQuickEntry) Create(_ context.Context, _ uuid.UUID, requesterID *uuid.UUID, _ procurementapp.QuickEntryRequest) (*procurementapp.QuickEntryResponse, error) {
	s.calls.Add(1)
	if requesterID == nil {
		return nil, procurement.ErrUnauthenticated
	}
	return &procurementapp.QuickEntryResponse{PurchaseOrders: []procurementapp.CreatedOrderSummary{{Number: "PO-2026-00001"}}}, nil
}

// stubLifecycle serves GetByID only; other methods are never routed in these tests
type stubLifecycle struct {
	handler.OrderLifecycle
}

func (stubLifecycle) GetByID(_ context.Context, tenantID, orderID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return &procurementapp.PurchaseOrderResponse{ID: orderID, TenantID: tenantID, Status: "draft"}, nil
}

type engineFixture struct {
	engine     *gin.Engine
	quickEntry *stubQuickEntry
	tokens     *auth.JWTService
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	f := &engineFixture{quickEntry: &stubQuickEntry{}, tokens: auth.NewJWTService(testJWTConfig)}
	engine, err := NewEngine(EngineConfig{
		ServiceName:    "procurement-test",
		HTTP:           config.HTTPConfig{MaxBodySize: 1 << 20},
		IdempotencyTTL: time.Hour,
	}, Dependencies{
		Tokens:         f.tokens,
		Idempotency:    store,
		PurchaseOrders: handler.NewPurchaseOrderHandler(f.quickEntry, stubLifecycle{}, nil),
		System:         handler.NewSystemHandler("procurement", "test", nil),
	})
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *engineFixture) token(t *testing.T, permissions ...string) string {
	t.Helper()
	token, _, err := f.tokens.GenerateAccessToken(auth.TokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "buyer",
		Permissions: permissions,
	})
	require.NoError(t, err)
	return token
}

func (f *engineFixture) do(req *http.Request) (*httptest.ResponseRecorder, dto.Response) {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestNewEngine_RequiresTokenValidator(t *testing.T) {
	_, err := NewEngine(EngineConfig{}, Dependencies{})
	assert.Error(t, err)
}

func TestEngine_System(t *testing.T) {
	f := newEngineFixture(t)

	w, _ := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w, _ = f.do(httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", resp.Data)
}

func TestEngine_NoRoute(t *testing.T) {
	f := newEngineFixture(t)

	w, resp := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRouteNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestEngine_Permissions(t *testing.T) {
	f := newEngineFixture(t)
	path := "/api/v1/purchase-orders/" + uuid.NewString()

	t.Run("anonymous", func(t *testing.T) {
		w, resp := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, procurement.CodeUnauthenticated, resp.Error.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+"garbage")
		w, resp := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, resp.Error.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+f.token(t, auth.PermissionCreate))
		w, resp := f.do(req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	})

	t.Run("granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+f.token(t, auth.PermissionRead))
		w, resp := f.do(req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})
}

func TestEngine_QuickEntry(t *testing.T) {
	body := `{"lines":[{"product_code":"P-100","quantity":1}],"warehouse_id":"` + uuid.NewString() + `"}`
	newRequest := func(token, key string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/quick-entry", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
		}
		if key != "" {
			req.Header.Set(middleware.IdempotencyKeyHeader, key)
		}
		return req
	}

	t.Run("anonymous reaches the service", func(t *testing.T) {
		f := newEngineFixture(t)

		w, resp := f.do(newRequest("", ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, procurement.CodeUnauthenticated, resp.Error.Code)
		assert.Equal(t, int32(1), f.quickEntry.calls.Load())
	})

	t.Run("token without create permission is forbidden", func(t *testing.T) {
		f := newEngineFixture(t)

		w, resp := f.do(newRequest(f.token(t, auth.PermissionRead), ""))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
		assert.Zero(t, f.quickEntry.calls.Load())
	})

	t.Run("duplicate submission is rejected", func(t *testing.T) {
		f := newEngineFixture(t)
		token := f.token(t, auth.PermissionCreate)

		w, _ := f.do(newRequest(token, "batch-1"))
		require.Equal(t, http.StatusCreated, w.Code)

		w, resp := f.do(newRequest(token, "batch-1"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, procurement.CodeDuplicateSubmission, resp.Error.Code)
		assert.Equal(t, int32(1), f.quickEntry.calls.Load())
	})
}
