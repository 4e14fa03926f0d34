package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tabacweb/tabac-backend/api/responses"
	"github.com/tabacweb/tabac-backend/api/validators"
	product "github.com/tabacweb/tabac-backend/internal/products"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// ListMenu returns the public menu: available items only, filterable by
// category, price range, and free-text query.
func ListMenu(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := listProductsInput(r, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ListCatalog returns the full catalog including unavailable items. Staff only.
func ListCatalog(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := listProductsInput(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// GetProduct returns one menu item by id.
func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	PriceCents  int     `json:"price_cents" validate:"required,min=1"`
	Category    string  `json:"category" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Stock       int     `json:"stock" validate:"min=0"`
	MinStock    *int    `json:"min_stock,omitempty" validate:"omitempty,min=0"`
	Available   *bool   `json:"available,omitempty"`
}

// CreateProduct adds a menu item. Staff only.
func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.CreateProductInput{
			Name:        body.Name,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			Category:    body.Category,
			ImageURL:    body.ImageURL,
			Stock:       body.Stock,
			MinStock:    body.MinStock,
			Available:   true,
		}
		if body.Available != nil {
			input.Available = *body.Available
		}

		item, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int    `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	Category    *string `json:"category,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
	MinStock    *int    `json:"min_stock,omitempty" validate:"omitempty,min=0"`
	Available   *bool   `json:"available,omitempty"`
}

// UpdateProduct mutates a menu item. Staff only.
func UpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateProduct(r.Context(), productID, product.UpdateProductInput{
			Name:        body.Name,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			Category:    body.Category,
			ImageURL:    body.ImageURL,
			Stock:       body.Stock,
			MinStock:    body.MinStock,
			Available:   body.Available,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ToggleProductAvailability flips an item on or off the menu without
// touching the rest of the record.
func ToggleProductAvailability(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next := !current.Available
		item, err := svc.UpdateProduct(r.Context(), productID, product.UpdateProductInput{Available: &next})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// DeleteProduct removes a menu item. Staff only.
func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func listProductsInput(r *http.Request, includeUnavailable bool) (product.ListProductsInput, error) {
	input := product.ListProductsInput{IncludeUnavailable: includeUnavailable}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		input.Filters.Category = &category
	}
	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		input.Filters.Query = query
	}
	if available := strings.TrimSpace(r.URL.Query().Get("available")); available != "" && includeUnavailable {
		value, err := strconv.ParseBool(available)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid available value")
		}
		input.Filters.Available = &value
	}
	if minStr := strings.TrimSpace(r.URL.Query().Get("price_min")); minStr != "" {
		value, err := strconv.Atoi(minStr)
		if err != nil || value < 0 {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "price_min must be a non-negative integer")
		}
		input.Filters.PriceMinCents = &value
	}
	if maxStr := strings.TrimSpace(r.URL.Query().Get("price_max")); maxStr != "" {
		value, err := strconv.Atoi(maxStr)
		if err != nil || value < 0 {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "price_max must be a non-negative integer")
		}
		input.Filters.PriceMaxCents = &value
	}

	return input, nil
}
