package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "retailpos/internal/core/context"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/auth"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/sales"
	"retailpos/internal/domain/settings"
	v1 "retailpos/internal/infrastructure/http/v1"
	"retailpos/internal/infrastructure/http/v1/handlers"
	"retailpos/internal/infrastructure/storage/memory"
	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/pkg/logger"
)

type apiFixture struct {
	router http.Handler
	store  *memory.Store
	jwt    *auth.JWTService
}

func newAPI(t *testing.T, idem *fakeIdempotency) *apiFixture {
	t.Helper()
	store := memory.New()
	cfg := settings.Default()
	cfg.TaxRatePercent = types.MustMoney("18")
	require.NoError(t, store.Settings().Save(context.Background(), cfg))

	settingsSvc := settings.NewService(store.Settings(), audit.Nop{})
	mutator := ledger.NewMutator(store.Variants(), store.Sales(), store.TxManager())

	rc := v1.RouterConfig{
		Logger:       logger.Default(),
		JWTValidator: auth.NewJWTService(auth.DefaultJWTConfig("test-secret")),
		Services: v1.Services{
			Sales: sales.NewService(store.Sales(), store.Variants(), mutator, store.Numerator(),
				settingsSvc, store.TxManager(), audit.Nop{}),
			Purchases:   purchases.NewService(store.Purchases(), store.Suppliers(), mutator, store.TxManager(), audit.Nop{}),
			Adjustments: adjustments.NewService(store.Adjustments(), mutator, store.TxManager(), audit.Nop{}),
			Ledger:      ledger.NewService(store.Variants(), settingsSvc),
			Movements:   movements.NewService(store.Movements(), store.Variants()),
			Settings:    settingsSvc,
			Audit:       store.Audit(),
		},
		HealthChecks: map[string]handlers.Pinger{"database": store},
		Version:      "test",
	}
	if idem != nil {
		rc.Idempotency = idem
	}
	return &apiFixture{
		router: v1.NewRouter(rc),
		store:  store,
		jwt:    auth.NewJWTService(auth.DefaultJWTConfig("test-secret")),
	}
}

func (f *apiFixture) token(t *testing.T, roles ...string) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateAccessToken("u-1", "asha", roles)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
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
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) variant(qty int64) *ledger.Variant {
	v := &ledger.Variant{
		ID:           id.New(),
		ProductName:  "Cotton Kurta",
		SKU:          "CK-" + id.New().String()[:6],
		SellingPrice: types.MustMoney("118"),
		StockQty:     qty,
		AvgCost:      types.MustMoney("60"),
		Status:       ledger.StatusActive,
	}
	f.store.AddVariant(v)
	return v
}

func saleBody(v *ledger.Variant, qty int64) map[string]any {
	return map[string]any{
		"paymentMode": "CASH",
		"items": []map[string]any{
			{"variantId": v.ID.String(), "qty": qty, "unitPrice": "118"},
		},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newAPI(t, nil)

	w := f.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["checks"].(map[string]any)["database"])
}

func TestAPIRequiresBearerToken(t *testing.T) {
	f := newAPI(t, nil)

	w := f.do(t, http.MethodGet, "/api/v1/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"])

	w = f.do(t, http.MethodGet, "/api/v1/sales", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettleSaleEndpoint(t *testing.T) {
	f := newAPI(t, nil)
	v := f.variant(10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.token(t, appctx.RoleCashier), saleBody(v, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "BILL-000001", body["billNo"])
	assert.Equal(t, "COMPLETED", body["status"])
	assert.Equal(t, "236.00", body["subtotal"])
	assert.Equal(t, "200.00", body["taxableValue"])
	assert.Equal(t, "36.00", body["taxAmount"])
	assert.Equal(t, "236.00", body["total"])
	assert.Equal(t, "80.00", body["profit"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "60.00", items[0].(map[string]any)["unitCostAtSale"])

	got, err := f.store.Variants().GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.StockQty)

	w = f.do(t, http.MethodGet, "/api/v1/sales/"+body["id"].(string), f.token(t, appctx.RoleCashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BILL-000001", decode(t, w)["billNo"])
}

func TestSettleSaleErrors(t *testing.T) {
	f := newAPI(t, nil)
	v := f.variant(3)
	tok := f.token(t, appctx.RoleCashier)

	w := f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(v, 5))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, float64(3), body["details"].(map[string]any)["available"])

	w = f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(v, 0))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_QUANTITY", decode(t, w)["code"])

	w = f.do(t, http.MethodPost, "/api/v1/sales", tok, map[string]any{"paymentMode": "CASH"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])

	unknown := &ledger.Variant{ID: id.New()}
	w = f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(unknown, 1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "VARIANT_NOT_FOUND", decode(t, w)["code"])
}

func TestVoidEndpointRolesAndStatus(t *testing.T) {
	f := newAPI(t, nil)
	v := f.variant(5)

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.token(t, appctx.RoleCashier), saleBody(v, 2))
	require.Equal(t, http.StatusCreated, w.Code)
	saleID := decode(t, w)["id"].(string)
	voidPath := "/api/v1/sales/" + saleID + "/void"
	reason := map[string]any{"reason": "customer returned"}

	w = f.do(t, http.MethodPost, voidPath, f.token(t, appctx.RoleCashier), reason)
	assert.Equal(t, http.StatusForbidden, w.Code)

	manager := f.token(t, appctx.RoleManager)
	w = f.do(t, http.MethodPost, voidPath, manager, reason)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "VOIDED", decode(t, w)["status"])

	w = f.do(t, http.MethodPost, voidPath, manager, reason)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "SALE_ALREADY_VOIDED", decode(t, w)["code"])

	w = f.do(t, http.MethodPost, "/api/v1/sales/not-an-id/void", manager, reason)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := f.store.Variants().GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.StockQty)

	w = f.do(t, http.MethodGet, "/api/v1/variants/"+v.ID.String()+"/movements", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"].([]any), 2)
}

func TestPurchaseAndAdjustmentEndpoints(t *testing.T) {
	f := newAPI(t, nil)
	v := f.variant(0)
	supplier := &purchases.Supplier{ID: id.New(), Name: "Weavers Co", IsActive: true}
	f.store.AddSupplier(supplier)
	cashier := f.token(t, appctx.RoleCashier)

	w := f.do(t, http.MethodPost, "/api/v1/purchases", cashier, map[string]any{
		"supplierId": supplier.ID.String(),
		"invoiceNo":  "INV-77",
		"items": []map[string]any{
			{"variantId": v.ID.String(), "qty": 10, "unitCost": "50"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "500.00", decode(t, w)["totalCost"])

	w = f.do(t, http.MethodGet, "/api/v1/variants/"+v.ID.String(), cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(10), body["stockQty"])
	assert.Equal(t, "50.00", body["avgCost"])

	adjust := map[string]any{"variantId": v.ID.String(), "delta": -4, "reason": "DAMAGE"}
	w = f.do(t, http.MethodPost, "/api/v1/stock-adjustments", cashier, adjust)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/stock-adjustments", f.token(t, appctx.RoleManager), adjust)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(6), decode(t, w)["stockAfter"])

	w = f.do(t, http.MethodGet, "/api/v1/stock-adjustments?reason=DAMAGE", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["totalCount"])
}

func TestQuantityBoundsOnEndpoints(t *testing.T) {
	f := newAPI(t, nil)
	v := f.variant(10)
	supplier := &purchases.Supplier{ID: id.New(), Name: "Weavers Co", IsActive: true}
	f.store.AddSupplier(supplier)
	manager := f.token(t, appctx.RoleManager)

	w := f.do(t, http.MethodPost, "/api/v1/purchases", manager, map[string]any{
		"supplierId": supplier.ID.String(),
		"invoiceNo":  "INV-78",
		"items": []map[string]any{
			{"variantId": v.ID.String(), "qty": int64(math.MaxInt64), "unitCost": "70"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_QUANTITY", decode(t, w)["code"])

	w = f.do(t, http.MethodPost, "/api/v1/stock-adjustments", manager, map[string]any{
		"variantId": v.ID.String(), "delta": int64(math.MinInt64), "reason": "CORRECTION",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_QUANTITY", decode(t, w)["code"])

	w = f.do(t, http.MethodPost, "/api/v1/sales", manager, saleBody(v, ledger.MaxLineQty+1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_QUANTITY", decode(t, w)["code"])

	got, err := f.store.Variants().GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.StockQty)
	assert.Equal(t, "60.00", got.AvgCost.StringFixed(2))
}

func TestLowStockListing(t *testing.T) {
	f := newAPI(t, nil)
	low := f.variant(2)
	f.variant(50)

	w := f.do(t, http.MethodGet, "/api/v1/variants?lowStock=true", f.token(t, appctx.RoleCashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID.String(), items[0].(map[string]any)["id"])
}

func TestSettingsEndpoint(t *testing.T) {
	f := newAPI(t, nil)
	update := map[string]any{
		"shopName":          "Main Street",
		"taxRatePercent":    "12",
		"billPrefix":        "INV",
		"lowStockThreshold": 3,
	}

	w := f.do(t, http.MethodPut, "/api/v1/settings", f.token(t, appctx.RoleManager), update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPut, "/api/v1/settings", f.token(t, appctx.RoleAdmin), update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/v1/settings", f.token(t, appctx.RoleCashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INV", body["billPrefix"])
	assert.Equal(t, "12", body["taxRatePercent"])
	assert.Equal(t, "u-1", body["updatedBy"])

	update["taxRatePercent"] = "120"
	w = f.do(t, http.MethodPut, "/api/v1/settings", f.token(t, appctx.RoleAdmin), update)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotentCheckoutReplays(t *testing.T) {
	idem := newFakeIdempotency()
	f := newAPI(t, idem)
	v := f.variant(10)
	tok := f.token(t, appctx.RoleCashier)

	first := f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(v, 1), "X-Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(v, 1), "X-Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.Equal(t, decode(t, first)["billNo"], decode(t, second)["billNo"])

	got, err := f.store.Variants().GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.StockQty)

	failed := f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(v, 50), "X-Idempotency-Key", "checkout-2")
	assert.Equal(t, http.StatusUnprocessableEntity, failed.Code)
	replayed := f.do(t, http.MethodPost, "/api/v1/sales", tok, saleBody(v, 50), "X-Idempotency-Key", "checkout-2")
	assert.Equal(t, http.StatusUnprocessableEntity, replayed.Code)
	assert.Equal(t, "true", replayed.Header().Get("Idempotent-Replay"))
}

// fakeIdempotency keeps keys in memory.
type fakeIdempotency struct {
	mu      sync.Mutex
	records map[string]*postgres.IdempotencyReplay
	pending map[string]bool
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{
		records: map[string]*postgres.IdempotencyReplay{},
		pending: map[string]bool{},
	}
}

func (f *fakeIdempotency) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[key]; ok {
		return r, nil
	}
	f.pending[key] = true
	return nil, nil
}

func (f *fakeIdempotency) store(key string, status int, contentType string, response any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.Marshal(response)
	if err != nil {
		return err
	}
	delete(f.pending, key)
	f.records[key] = &postgres.IdempotencyReplay{StatusCode: status, ContentType: contentType, Body: b}
	return nil
}

func (f *fakeIdempotency) CompleteKey(_ context.Context, key string, status int, contentType string, response any) error {
	return f.store(key, status, contentType, response)
}

func (f *fakeIdempotency) FailKey(_ context.Context, key string, status int, contentType string, response any) error {
	return f.store(key, status, contentType, response)
}

func (f *fakeIdempotency) ReleaseKey(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, key)
	return nil
}
