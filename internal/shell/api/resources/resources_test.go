package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/manyminds/api2go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func request(role auth.Role, query map[string][]string) api2go.Request {
	r := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
	if role != "" {
		r = r.WithContext(auth.WithContext(r.Context(), auth.Context{
			Subject:       "test",
			Role:          role,
			Authenticated: true,
		}))
	}
	if query == nil {
		query = map[string][]string{}
	}
	return api2go.Request{PlainRequest: r, QueryParams: query}
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(api2go.HTTPError)
	require.True(t, ok, "expected api2go.HTTPError, got %T", err)
	require.NotEmpty(t, httpErr.Errors)
	status, err := strconv.Atoi(httpErr.Errors[0].Status)
	require.NoError(t, err)
	return status
}

func seedCategory(t *testing.T, s store.Store) *domain.Category {
	t.Helper()
	cat, err := domain.NewCategory("Inverters")
	require.NoError(t, err)
	require.NoError(t, s.CreateCategory(context.Background(), cat))
	return cat
}

// =============================================================================
// Category Resource Tests
// =============================================================================

func TestCategoryResource_CreateAndFind(t *testing.T) {
	s := setupStore(t)
	res := NewCategoryResource(s)

	resp, err := res.Create(Category{Name: "Solar Panels", SortOrder: 1}, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())

	created := resp.Result().(Category)
	assert.Equal(t, "solar-panels", created.Slug)

	resp, err = res.FindOne(created.ID, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	assert.Equal(t, "Solar Panels", resp.Result().(Category).Name)

	resp, err = res.FindAll(request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	assert.Len(t, resp.Result().([]Category), 1)
	assert.Equal(t, 1, resp.Metadata()["total"])
}

func TestCategoryResource_Create_StaffForbidden(t *testing.T) {
	res := NewCategoryResource(setupStore(t))
	_, err := res.Create(Category{Name: "Panels"}, request(auth.RoleStaff, nil))
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
}

func TestCategoryResource_Create_Validation(t *testing.T) {
	res := NewCategoryResource(setupStore(t))
	_, err := res.Create(Category{Name: ""}, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestCategoryResource_Create_DuplicateSlug(t *testing.T) {
	s := setupStore(t)
	seedCategory(t, s)
	res := NewCategoryResource(s)

	_, err := res.Create(Category{Name: "Inverters"}, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
}

func TestCategoryResource_Update(t *testing.T) {
	s := setupStore(t)
	cat := seedCategory(t, s)
	res := NewCategoryResource(s)

	resp, err := res.Update(Category{ID: cat.ReferenceID, Name: "Hybrid Inverters"}, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	assert.Equal(t, "hybrid-inverters", resp.Result().(Category).Slug)
}

func TestCategoryResource_Delete_WithProducts(t *testing.T) {
	s := setupStore(t)
	cat := seedCategory(t, s)
	p, err := domain.NewProduct(cat.ReferenceID, "Growatt 5kW", 185000)
	require.NoError(t, err)
	require.NoError(t, s.CreateProduct(context.Background(), p))

	res := NewCategoryResource(s)
	_, err = res.Delete(cat.ReferenceID, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))

	require.NoError(t, s.DeleteProduct(context.Background(), p.ReferenceID))
	resp, err := res.Delete(cat.ReferenceID, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestCategoryResource_FindOne_NotFound(t *testing.T) {
	res := NewCategoryResource(setupStore(t))
	_, err := res.FindOne("cat_missing", request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

// =============================================================================
// Product Resource Tests
// =============================================================================

func TestProductResource_CreateUpdate(t *testing.T) {
	s := setupStore(t)
	cat := seedCategory(t, s)
	res := NewProductResource(s)

	stock := 4
	resp, err := res.Create(Product{
		CategoryID: cat.ReferenceID,
		Name:       "Growatt 5kW",
		SKU:        "GW-5K",
		Price:      185000,
		Stock:      &stock,
	}, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	created := resp.Result().(Product)
	assert.Equal(t, 4, *created.Stock)
	assert.True(t, *created.Active)
	assert.Equal(t, cat.ReferenceID, created.GetReferencedIDs()[0].ID)

	featured := true
	zero := 0
	resp, err = res.Update(Product{ID: created.ID, Featured: &featured, Stock: &zero}, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	updated := resp.Result().(Product)
	assert.True(t, *updated.Featured)
	assert.Equal(t, 0, *updated.Stock)
	assert.Equal(t, int64(185000), updated.Price)
}

func TestProductResource_Create_UnknownCategory(t *testing.T) {
	res := NewProductResource(setupStore(t))
	_, err := res.Create(Product{CategoryID: "cat_missing", Name: "Panel", Price: 100}, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(t, err))
}

func TestProductResource_Update_InvalidCompareAt(t *testing.T) {
	s := setupStore(t)
	cat := seedCategory(t, s)
	p, err := domain.NewProduct(cat.ReferenceID, "Panel", 1000)
	require.NoError(t, err)
	require.NoError(t, s.CreateProduct(context.Background(), p))

	res := NewProductResource(s)
	_, err = res.Update(Product{ID: p.ReferenceID, CompareAtPrice: 500}, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestProductResource_FindAll_Filter(t *testing.T) {
	s := setupStore(t)
	cat := seedCategory(t, s)
	for _, name := range []string{"Panel A", "Panel B"} {
		p, err := domain.NewProduct(cat.ReferenceID, name, 1000)
		require.NoError(t, err)
		p.Featured = name == "Panel A"
		require.NoError(t, s.CreateProduct(context.Background(), p))
	}

	res := NewProductResource(s)
	resp, err := res.FindAll(request(auth.RoleAdmin, map[string][]string{"filter[featured]": {"true"}}))
	require.NoError(t, err)
	products := resp.Result().([]Product)
	require.Len(t, products, 1)
	assert.Equal(t, "Panel A", products[0].Name)
}

func TestProductSetToOneReferenceID(t *testing.T) {
	p := &Product{}
	require.NoError(t, p.SetToOneReferenceID("category", "cat_1"))
	assert.Equal(t, "cat_1", p.CategoryID)
}

// =============================================================================
// Order Resource Tests
// =============================================================================

func seedOrder(t *testing.T, s store.Store) *domain.Order {
	t.Helper()
	cat := seedCategory(t, s)
	p, err := domain.NewProduct(cat.ReferenceID, "Panel", 42000)
	require.NoError(t, err)
	p.Stock = 10
	require.NoError(t, s.CreateProduct(context.Background(), p))

	order, err := domain.NewOrder(domain.Customer{
		Name: "Ayesha Khan", Phone: "+923001234567", Address: "House 12", City: "Lahore",
	}, []domain.LineItem{{ProductID: p.ReferenceID, Name: p.Name, UnitPrice: p.Price, Quantity: 2}}, domain.PaymentCashOnDelivery)
	require.NoError(t, err)
	require.NoError(t, s.CreateOrder(context.Background(), order))
	return order
}

func TestOrderResource_FindAll_RequiresRole(t *testing.T) {
	s := setupStore(t)
	seedOrder(t, s)
	res := NewOrderResource(s)

	_, err := res.FindAll(request("", nil))
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))

	resp, err := res.FindAll(request(auth.RoleStaff, map[string][]string{"filter[status]": {"pending"}}))
	require.NoError(t, err)
	assert.Len(t, resp.Result().([]Order), 1)
}

func TestOrderResource_UpdateStatus(t *testing.T) {
	s := setupStore(t)
	order := seedOrder(t, s)
	res := NewOrderResource(s)

	resp, err := res.Update(Order{ID: order.ReferenceID, Status: "confirmed"}, request(auth.RoleStaff, nil))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Result().(Order).Status)

	stored, err := s.GetOrder(context.Background(), order.ReferenceID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, stored.Status)
}

func TestOrderResource_UpdateStatus_InvalidTransition(t *testing.T) {
	s := setupStore(t)
	order := seedOrder(t, s)
	res := NewOrderResource(s)

	_, err := res.Update(Order{ID: order.ReferenceID, Status: "delivered"}, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
}

func TestOrderResource_UpdateStatus_StaffCannotCancel(t *testing.T) {
	s := setupStore(t)
	order := seedOrder(t, s)
	res := NewOrderResource(s)

	_, err := res.Update(Order{ID: order.ReferenceID, Status: "cancelled"}, request(auth.RoleStaff, nil))
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
}

func TestOrderResource_Delete(t *testing.T) {
	s := setupStore(t)
	order := seedOrder(t, s)
	res := NewOrderResource(s)

	_, err := res.Delete(order.ReferenceID, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))

	_, err = res.Update(Order{ID: order.ReferenceID, Status: "cancelled"}, request(auth.RoleAdmin, nil))
	require.NoError(t, err)

	resp, err := res.Delete(order.ReferenceID, request(auth.RoleAdmin, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestOrderResource_Create_NotAllowed(t *testing.T) {
	res := NewOrderResource(setupStore(t))
	_, err := res.Create(Order{}, request(auth.RoleAdmin, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, httpStatus(t, err))
}
