package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/velure/internal/catalog/application"
	"github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/internal/catalog/infrastructure/persistence/mysql"
	"github.com/wyfcoding/velure/pkg/db"
	"github.com/wyfcoding/velure/pkg/middleware"
	"github.com/wyfcoding/velure/pkg/mq"
)

func setup(t *testing.T) (*gin.Engine, *middleware.Authenticator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Init(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db"), MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&domain.Product{}))
	t.Cleanup(func() { _ = database.Close() })

	repo := mysql.NewProductRepository(database.DB)
	app := application.NewCatalogApplicationService(
		application.NewCatalogCommandService(repo, nil, mq.NoopPublisher{}),
		application.NewCatalogQueryService(repo, nil, time.Minute, nil),
	)

	auth := middleware.NewAuthenticator("secret", "velure", time.Hour)
	r := gin.New()
	r.Use(middleware.GinAuthMiddleware(auth))
	NewCatalogHandler(app).RegisterRoutes(r.Group("/api/v1"), middleware.RequireAdmin())
	return r, auth
}

func call(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCatalogHandler(t *testing.T) {
	r, auth := setup(t)
	admin, _ := auth.IssueToken("admin-1", middleware.RoleAdmin)
	user, _ := auth.IssueToken("user-1", middleware.RoleUser)

	body := `{"name":"Lotus Ring","productDetails":"18k gold","category":"Rings","priceINR":45000,"priceUSD":"540.00","stock":5,"image1":"/a.jpg","image2":" "}`

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/v1/products", body, "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/products", body, user).Code)

	rec := call(r, http.MethodPost, "/api/v1/products", body, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Lotus Ring")

	rec = call(r, http.MethodGet, "/api/v1/products?category=Rings&market=US&sortBy=price-low", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lotus Ring")

	rec = call(r, http.MethodGet, "/api/v1/products?category=Necklaces", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Lotus Ring")

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/products/1", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/v1/products/42", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/api/v1/products/abc", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/api/v1/products?market=FR", "", "").Code)

	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPatch, "/api/v1/products/1", `{}`, admin).Code)
	rec = call(r, http.MethodPatch, "/api/v1/products/1", `{"stock":2,"featured":true}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusOK, call(r, http.MethodDelete, "/api/v1/products/1", "", admin).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodDelete, "/api/v1/products/1", "", admin).Code)
}
