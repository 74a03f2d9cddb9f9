package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/inventory/internal/apperr"
	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/service"
)

type errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateProductRequest struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type DeleteProductResponse struct {
	Deleted int64 `json:"deleted"`
}

type productHandler struct {
	productSvc  service.ProductService
	searchSvc   service.SearchService
	handleError errorHandlerFunc
}

func newProductHandler(productSvc service.ProductService, searchSvc service.SearchService, handleError errorHandlerFunc) *productHandler {
	return &productHandler{
		productSvc:  productSvc,
		searchSvc:   searchSvc,
		handleError: handleError,
	}
}

// ListProducts returns every product, or the matches of the repeated
// criteria query parameter ("field:substring").
func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "productHandler.ListProducts")
	defer span.End()

	criteria := r.URL.Query()["criteria"]

	var (
		products []model.Product
		err      error
	)
	if len(criteria) == 0 {
		products, err = h.productSvc.ListAllProducts(ctx)
	} else {
		products, err = h.searchSvc.Search(ctx, criteria)
	}
	if err != nil {
		h.handleError(w, r, fmt.Errorf("list products: %w", err))
		return
	}

	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "productHandler.CreateProduct")
	defer span.End()

	var body CreateProductRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.handleError(w, r, apperr.ValidationErr.WrapParent(err).WithMsg("invalid request body: %v", err))
		return
	}

	product, err := h.productSvc.AddProduct(ctx, service.AddProductParams{
		Name:     body.Name,
		Quantity: body.Quantity,
		Price:    body.Price,
		Category: body.Category,
	})
	if err != nil {
		h.handleError(w, r, fmt.Errorf("product service add product: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// DeleteProduct always answers 200 with the number of removed rows; deleting
// a missing id reports zero.
func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "productHandler.DeleteProduct")
	defer span.End()

	rawID := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.handleError(w, r, apperr.ValidationErr.WrapParent(err).WithMsg("invalid product id %q", rawID))
		return
	}

	n, err := h.productSvc.DeleteProduct(ctx, id)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("product service delete product: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, DeleteProductResponse{Deleted: n})
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price,
		Category:  p.Category,
		CreatedAt: p.CreatedAt,
	}
}
