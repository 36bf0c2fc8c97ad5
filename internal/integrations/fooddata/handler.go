package fooddata

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/logging"
)

// Catalog searches foods and loads their nutrients
type Catalog interface {
	Search(ctx context.Context, query string) ([]ProductSummary, error)
	Product(ctx context.Context, code string) (*Product, error)
}

type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Search finds foods by name
// @Summary      Search foods
// @Description  Accepts free text such as "100g apple". Returns up to 10 matches.
// @Tags         food
// @Produce      json
// @Param        query query string true "Search text"
// @Success      200 {array} ProductSummary
// @Failure      400 {object} httputil.ErrorResponse "Missing query"
// @Failure      500 {object} httputil.ErrorResponse "Food database unavailable"
// @Router       /api/food/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		httputil.RespondErrorWithCode(w, "query is required", httputil.CodeMissingFields, http.StatusBadRequest)
		return
	}

	products, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		logger.Error("food search failed", "query", query, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Invalid API response", httputil.CodeUpstreamFailure, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, products, http.StatusOK)
}

// Product returns the nutrients of a food
// @Summary      Get food product
// @Tags         food
// @Produce      json
// @Param        code path string true "FoodData Central id"
// @Success      200 {object} Product
// @Failure      404 {object} httputil.ErrorResponse "Product not found"
// @Failure      500 {object} httputil.ErrorResponse "Food database unavailable"
// @Router       /api/food/product/{code} [get]
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	code := chi.URLParam(r, "code")

	product, err := h.catalog.Product(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			httputil.RespondErrorWithCode(w, "Product not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("food product lookup failed", "code", code, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to fetch product", httputil.CodeUpstreamFailure, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, product, http.StatusOK)
}
