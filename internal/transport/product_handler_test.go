package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopverse/internal/domain"
	"shopverse/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newBrowseTestHandler(products ...*domain.Product) *ProductHandler {
	handler, _ := newProductTestHandler(products...)
	return handler
}

func newProductTestHandler(products ...*domain.Product) (*ProductHandler, *stubProductService) {
	productService := &stubProductService{
		products:   make(map[uuid.UUID]*domain.Product),
		categories: make(map[uuid.UUID]*domain.Category),
	}
	for _, p := range products {
		productService.products[p.ID] = p
	}
	return NewProductHandler(productService, nil, zap.NewNop()), productService
}

func browseProducts() []*domain.Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*domain.Product{
		{ID: uuid.New(), Name: "Alpha Lamp", Description: "warm light", Category: "Home", Price: 30, Featured: true, CreatedAt: base},
		{ID: uuid.New(), Name: "Beta Mug", Description: "coffee mug", Category: "Kitchen", Price: 12.5, CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), Name: "Gamma Lamp", Description: "floor lamp", Category: "Home", Price: 80, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func doBrowse(t *testing.T, handler *ProductHandler, target string) BrowseResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.Browse(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp BrowseResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode browse response: %v", err)
	}
	return resp
}

func TestBrowseWithoutParameters(t *testing.T) {
	handler := newBrowseTestHandler(browseProducts()...)

	resp := doBrowse(t, handler, "/api/products")
	if resp.Total != 3 {
		t.Errorf("expected all 3 products, got %d", resp.Total)
	}
	if len(resp.Products) != resp.Total {
		t.Errorf("total does not match product count")
	}
}

func TestBrowseSearchParameter(t *testing.T) {
	handler := newBrowseTestHandler(browseProducts()...)

	resp := doBrowse(t, handler, "/api/products?search=lamp")
	if resp.Total != 2 {
		t.Fatalf("expected 2 lamps, got %d", resp.Total)
	}
	for _, p := range resp.Products {
		if p.Category != "Home" {
			t.Errorf("unexpected product in search results: %+v", p)
		}
	}
}

func TestBrowseCategoryAndSort(t *testing.T) {
	handler := newBrowseTestHandler(browseProducts()...)

	resp := doBrowse(t, handler, "/api/products?category=Home&sort=price-high")
	if resp.Total != 2 {
		t.Fatalf("expected 2 home products, got %d", resp.Total)
	}
	if resp.Products[0].Name != "Gamma Lamp" || resp.Products[1].Name != "Alpha Lamp" {
		t.Errorf("wrong order: %s, %s", resp.Products[0].Name, resp.Products[1].Name)
	}
}

func TestBrowseFeaturedOnly(t *testing.T) {
	handler := newBrowseTestHandler(browseProducts()...)

	resp := doBrowse(t, handler, "/api/products?featured=true")
	if resp.Total != 1 || resp.Products[0].Name != "Alpha Lamp" {
		t.Errorf("expected only the featured product, got %+v", resp.Products)
	}
}

func TestBrowseEchoesCanonicalQuery(t *testing.T) {
	handler := newBrowseTestHandler(browseProducts()...)

	resp := doBrowse(t, handler, "/api/products?search=lamp&category=Home&sort=price-low")
	want := "category=Home&search=lamp&sort=price-low"
	if resp.Query != want {
		t.Errorf("canonical query = %q, want %q", resp.Query, want)
	}
}

func TestBrowseMalformedPricesAreIgnored(t *testing.T) {
	handler := newBrowseTestHandler(browseProducts()...)

	resp := doBrowse(t, handler, "/api/products?min_price=abc&max_price=-1")
	if resp.Total != 3 {
		t.Errorf("malformed price bounds should be ignored, got %d products", resp.Total)
	}
}

func TestListProductsPageParsesQueryParams(t *testing.T) {
	handler, stub := newProductTestHandler(browseProducts()...)
	categoryID := uuid.New()

	target := "/api/admin/products?q=lamp&page=2&page_size=5&sort=price&order=asc&category_id=" + categoryID.String()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.ListProductsPage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := stub.lastPageQuery
	if got.Query != "lamp" {
		t.Errorf("query not forwarded, got %q", got.Query)
	}
	if got.Page != 2 || got.PageSize != 5 {
		t.Errorf("paging not forwarded, got page=%d size=%d", got.Page, got.PageSize)
	}
	if got.SortBy != "price" || got.SortOrder != repository.SortOrderAsc {
		t.Errorf("sorting not forwarded, got sort=%q order=%q", got.SortBy, got.SortOrder)
	}
	if got.CategoryID == nil || *got.CategoryID != categoryID {
		t.Errorf("category filter not forwarded, got %v", got.CategoryID)
	}

	var resp ProductPageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode page response: %v", err)
	}
	if resp.Total != 3 || resp.Page != 2 || resp.PageSize != 5 {
		t.Errorf("page metadata not echoed: %+v", resp)
	}
}

func TestListProductsPageDefaultsToNewestFirst(t *testing.T) {
	handler, stub := newProductTestHandler(browseProducts()...)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	w := httptest.NewRecorder()
	handler.ListProductsPage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if stub.lastPageQuery.SortOrder != repository.SortOrderDesc {
		t.Errorf("expected descending default order, got %q", stub.lastPageQuery.SortOrder)
	}
	if stub.lastPageQuery.CategoryID != nil {
		t.Errorf("expected no category filter by default")
	}
}

func TestListProductsPageRejectsMalformedCategoryID(t *testing.T) {
	handler, _ := newProductTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products?category_id=not-a-uuid", nil)
	w := httptest.NewRecorder()
	handler.ListProductsPage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed category id, got %d", w.Code)
	}
}

func TestGetCategoryEndpoint(t *testing.T) {
	handler, stub := newProductTestHandler()
	home := &domain.Category{ID: uuid.New(), Name: "Home"}
	stub.categories[home.ID] = home

	router := chi.NewRouter()
	handler.RegisterRoutes(router, func(next http.Handler) http.Handler { return next })

	req := httptest.NewRequest(http.MethodGet, "/api/categories/"+home.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got domain.Category
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode category: %v", err)
	}
	if got.ID != home.ID || got.Name != "Home" {
		t.Errorf("wrong category returned: %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/categories/"+uuid.New().String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown category, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/categories/not-a-uuid", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed category id, got %d", w.Code)
	}
}
