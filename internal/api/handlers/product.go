package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/api/middleware"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	service "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/services"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/utils"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
	sanitizer      *bluemonday.Policy
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		sanitizer:      bluemonday.StrictPolicy(),
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := parseID(r)
		if err != nil {
			response.WriteJson(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		result, err := h.productService.GetProduct(r.Context(), id)

		if err != nil {
			logger.Error("Failed to fetch product", slog.Int64("productId", id), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Product served", slog.Int64("productId", id), slog.String("source", result.Source))
		response.WriteJson(w, http.StatusOK, result)

	}
}

func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		products, err := h.productService.ListProducts(r.Context())

		if err != nil {
			logger.Error("Failed to fetch products", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.ListProductsResponse{
			Data:        products,
			Count:       len(products),
			CacheStatus: models.CacheStatus(h.productService.CacheAvailable()),
		})

	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.WriteJson(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Strip markup before validation so a name that is nothing but
		// markup fails the required check.
		req.Name = h.sanitizer.Sanitize(req.Name)

		if !h.validate(w, req) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)

		if err != nil {
			logger.Error("Error during product creation", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Product created successfully", slog.Int64("productId", product.ID))
		response.WriteJson(w, http.StatusCreated, models.CreateProductResponse{
			Product:     *product,
			CacheStatus: models.CacheStatus(h.productService.CacheAvailable()),
		})

	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := parseID(r)
		if err != nil {
			response.WriteJson(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		var req models.UpdateProductRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.WriteJson(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		req.Name = h.sanitizer.Sanitize(req.Name)

		if !h.validate(w, req) {
			return
		}

		result, err := h.productService.UpdateProduct(r.Context(), id, &req)

		if err != nil {
			logger.Error("Error during product update", slog.Int64("productId", id), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated successfully", slog.Int64("productId", id), slog.Bool("cacheInvalidated", result.Invalidated))
		response.WriteJson(w, http.StatusOK, models.UpdateProductResponse{
			Product:          *result.Product,
			CacheInvalidated: result.Invalidated,
			CacheStatus:      models.CacheStatus(h.productService.CacheAvailable()),
		})

	}
}

func (h *ProductHandler) validate(w http.ResponseWriter, req any) bool {

	if err := utils.ValidateStruct(h.validator, req); err != nil {

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.WriteJson(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid input data")))

		return false
	}

	return true
}

func parseID(r *http.Request) (int64, error) {

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid product id")
	}

	return id, nil
}
