package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
	"github.com/dwikikusuma/shopdemo/pkg/money"
)

type createProductRequest struct {
	Name        *string         `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Stock       json.RawMessage `json:"stock"`
	Category    string          `json:"category"`
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decode(w, r, &req); err != nil && err != errEmptyBody {
		badRequest(w, "Invalid JSON body", nil)
		return
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	if name == "" || len(req.Price) == 0 || len(req.Stock) == 0 {
		badRequest(w, "Name, price, and stock are required fields", apperr.Fields{
			"received": apperr.Fields{"name": req.Name, "price": rawValue(req.Price), "stock": rawValue(req.Stock)},
		})
		return
	}

	price, err := money.FromNumber(req.Price)
	if err != nil || !price.IsPositive() {
		badRequest(w, "Price must be a number greater than 0", apperr.Fields{
			"received": apperr.Fields{"price": rawValue(req.Price), "type": jsonType(req.Price)},
		})
		return
	}

	stock, err := money.IntFromNumber(req.Stock)
	if err != nil || stock < 0 {
		badRequest(w, "Stock must be a number greater than or equal to 0", apperr.Fields{
			"received": apperr.Fields{"stock": rawValue(req.Stock), "type": jsonType(req.Stock)},
		})
		return
	}

	product, err := a.svc.Catalog.CreateProduct(r.Context(), domain.NewProduct{
		Name:        name,
		Description: req.Description,
		Price:       price,
		Stock:       stock,
		Category:    req.Category,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.svc.Catalog.ListProducts(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := a.svc.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "product": product})
}
