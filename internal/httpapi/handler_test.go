package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	authrepo "github.com/fekuna/omnipos-inventory-service/internal/auth/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/httpapi"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	inventoryuc "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	locationrepo "github.com/fekuna/omnipos-inventory-service/internal/location/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	productuc "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const password = "pa55word"

type nopPublisher struct{}

func (nopPublisher) PublishJSON(ctx context.Context, key string, v any) error { return nil }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := repository.NewMemoryRepository()
	products := productuc.NewProductUseCase(repo, rc, nil, log)
	inv := inventoryuc.NewInventoryUseCase(repo, rc, nopPublisher{}, products, log)
	_, err := inv.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Cedar Bench", ProductCode: "PRD-C", LocationID: 1, InitialQuantity: 5,
		PurchasePrice: decimal.NewFromInt(50), SellingPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	dir := location.NewDirectory(locationrepo.NewMemoryRepository(
		model.Location{ID: 1, Name: "Central Warehouse", Type: model.LocationWarehouse},
		model.Location{ID: 2, Name: "City Showroom", Type: model.LocationShowroom},
	), log)
	require.NoError(t, dir.Load(ctx))

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	showroom := int64(2)
	users := authrepo.NewMemoryRepository(
		model.User{
			BaseModel: model.BaseModel{ID: "admin-1"}, Email: "admin@example.com", Role: model.RoleAdmin,
			PasswordHash: hash, Permissions: &model.Permissions{Locations: []int64{1, 2}}, Status: "active",
		},
		model.User{
			BaseModel: model.BaseModel{ID: "sm-1"}, Email: "sm@example.com", Role: model.RoleSalesManager,
			PasswordHash: hash, Permissions: &model.Permissions{}, AssignedLocationID: &showroom, Status: "active",
		},
	)
	authService := auth.NewService(users, auth.NewRedisSessionStore(rc), auth.NewTokenManager("test-secret", time.Hour), time.Hour, log)

	evaluator := permission.NewEvaluator(dir, log)
	h := httpapi.NewHandler(authService, evaluator, report.NewExporter(products, inv, dir, log), log)

	srv := httptest.NewServer(httpapi.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	resp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func do(t *testing.T, method, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_Rejects(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json",
		strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/v1/auth/login", "application/json", strings.NewReader(`{"user":"x"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStockReport(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/reports/stock.xlsx", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := login(t, srv, "admin@example.com")
	resp = do(t, http.MethodGet, srv.URL+"/api/v1/reports/stock.xlsx?location_id=1", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.LotsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PRD-C", rows[1][0])

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/reports/stock.xlsx?location_id=abc", token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStockReport_SalesManagerOutsideAssignment(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv, "sm@example.com")

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/reports/stock.xlsx?location_id=1", token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/reports/stock.xlsx?location_id=2", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv, "admin@example.com")

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/reports/stock.xlsx", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
