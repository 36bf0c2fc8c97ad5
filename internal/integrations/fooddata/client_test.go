package fooddata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/fitness-api/internal/config"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		query    string
		name     string
		quantity int
	}{
		{"100g apple", "apple", 100},
		{"250 grams chicken breast", "chicken breast", 250},
		{"2 kg rice", "rice", 2},
		{"100G apple", "apple", 100},
		{"2 KG rice", "rice", 2},
		{"250 Grams Chicken", "Chicken", 250},
		{"banana", "banana", 100},
		{"grapes", "grapes", 100},
		{"500mg salt", "salt", 500},
		{"  oat milk  ", "oat milk", 100},
		{"30", "", 30},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			name, quantity := ParseQuery(tt.query)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.quantity, quantity)
		})
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.FoodDataConfig{APIKey: "test-key", BaseURL: srv.URL})
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"totalHits":2,"foods":[{"fdcId":171688,"description":"Apples, raw, with skin"},{"fdcId":1750339}]}`))
	})

	products, err := c.Search(context.Background(), "100g apple")
	require.NoError(t, err)
	assert.Equal(t, []ProductSummary{
		{Code: "171688", Name: "Apples, raw, with skin"},
		{Code: "1750339", Name: "Unknown"},
	}, products)
}

func TestClient_Search_MissingFoods(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"bad key"}`))
	})

	_, err := c.Search(context.Background(), "apple")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClient_Product(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/food/171688", r.URL.Path)
		w.Write([]byte(`{"description":"Apples, raw, with skin","foodNutrients":[
			{"amount":52,"nutrient":{"name":"Energy","unitName":"kcal"}},
			{"amount":13.8,"nutrient":{"name":"Carbohydrate, by difference"}},
			{"amount":0.26,"nutrient":{"name":"Protein"}},
			{"amount":0.17,"nutrient":{"name":"Total lipid (fat)"}},
			{"amount":2.4,"nutrient":{"name":"Fiber, total dietary"}}
		]}`))
	})

	p, err := c.Product(context.Background(), "171688")
	require.NoError(t, err)
	assert.Equal(t, &Product{Code: "171688", Name: "Apples, raw, with skin", Calories: 52, Carbs: 13.8, Proteins: 0.26, Fats: 0.17}, p)
}

func TestClient_Product_NotFound(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"upstream 404", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"no description", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.h)
			_, err := c.Product(context.Background(), "1")
			assert.ErrorIs(t, err, ErrProductNotFound)
		})
	}
}

type stubCatalog struct {
	products []ProductSummary
	product  *Product
	err      error
}

func (s stubCatalog) Search(context.Context, string) ([]ProductSummary, error) {
	return s.products, s.err
}

func (s stubCatalog) Product(context.Context, string) (*Product, error) {
	return s.product, s.err
}

func newRouter(c Catalog) http.Handler {
	h := NewHandler(c)
	r := chi.NewRouter()
	r.Get("/api/food/search", h.Search)
	r.Get("/api/food/product/{code}", h.Product)
	return r
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		catalog    stubCatalog
		target     string
		wantStatus int
		wantBody   string
	}{
		{"search", stubCatalog{products: []ProductSummary{{Code: "1", Name: "Apple"}}}, "/api/food/search?query=apple", http.StatusOK, `[{"code":"1","name":"Apple"}]`},
		{"search without query", stubCatalog{}, "/api/food/search", http.StatusBadRequest, ""},
		{"search upstream error", stubCatalog{err: ErrUpstream}, "/api/food/search?query=apple", http.StatusInternalServerError, ""},
		{"product", stubCatalog{product: &Product{Code: "1", Name: "Apple", Calories: 52}}, "/api/food/product/1", http.StatusOK, `{"code":"1","name":"Apple","calories":52,"carbs":0,"proteins":0,"fats":0}`},
		{"unknown product", stubCatalog{err: ErrProductNotFound}, "/api/food/product/404", http.StatusNotFound, `{"error":"Product not found","code":"NOT_FOUND"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(tt.catalog).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
