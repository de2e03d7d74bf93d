package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup_MountsUnderVersion(t *testing.T) {
	engine := gin.New()
	books := NewDomainGroup("books", "/books").GET("/cash", respond("cashbook"))
	NewRouter(engine, WithAPIVersion("v2")).Register(books).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/books/cash")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cashbook", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/books/cash").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("invoices", "/invoices").
		GET("/:id", respond("get")).
		POST("", respond("create")).
		PUT("/:id", respond("replace")).
		DELETE("/:id", respond("delete"))
	NewRouter(engine).Register(g).Setup()

	assert.Equal(t, "invoices", g.Name())
	assert.Equal(t, "/invoices", g.Prefix())

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/invoices/42", "get"},
		{http.MethodPost, "/api/v1/invoices", "create"},
		{http.MethodPut, "/api/v1/invoices/42", "replace"},
		{http.MethodDelete, "/api/v1/invoices/42", "delete"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, w.Body.String())
	}
}

func TestDomainGroup_MiddlewareReachesSubgroups(t *testing.T) {
	engine := gin.New()
	api := NewDomainGroup("books", "").Use(func(c *gin.Context) {
		c.Header("X-Scoped", "yes")
		c.Next()
	})
	api.Group("vendors", "/vendors").GET("", respond("vendors"))
	api.Group("retailers", "/retailers").GET("", respond("retailers"))

	open := NewDomainGroup("system", "/system").GET("/info", respond("info"))
	NewRouter(engine).Register(api).Register(open).Setup()

	for _, path := range []string{"/api/v1/vendors", "/api/v1/retailers"} {
		w := serve(engine, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "yes", w.Header().Get("X-Scoped"), path)
	}

	w := serve(engine, http.MethodGet, "/api/v1/system/info")
	assert.Equal(t, "info", w.Body.String())
	assert.Empty(t, w.Header().Get("X-Scoped"))
}
