package transport

import (
	"errors"
	"net/http"

	"food-catalog/internal/domain"
	"food-catalog/internal/media"
	"food-catalog/internal/middleware"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const noProductsMessage = "No products found. Please add a new product."

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	maxUpload      int64
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler. maxUpload caps the image
// part of multipart requests.
func NewProductHandler(productService service.ProductService, maxUpload int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUpload:      maxUpload,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
		r.Patch("/{id}/price", h.UpdateProductPrice)
	})
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFromQuery(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	products, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if len(products) == 0 {
		middleware.RespondList(w, noProductsMessage, []*domain.Product{}, 0)
		return
	}
	middleware.RespondList(w, "", products, len(products))
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid product id", err.Error())
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "", product)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readRequest(w, r)
	if !ok {
		return
	}
	defer req.closer()

	product, err := h.productService.CreateProduct(r.Context(), req.input, req.image)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusCreated, "Product created successfully", product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid product id", err.Error())
		return
	}

	req, ok := h.readRequest(w, r)
	if !ok {
		return
	}
	defer req.closer()

	product, err := h.productService.UpdateProduct(r.Context(), id, req.input, req.image)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid product id", err.Error())
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Product deleted successfully", nil)
}

// UpdateProductPrice handles PATCH /api/products/{id}/price
func (h *ProductHandler) UpdateProductPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid product id", err.Error())
		return
	}

	var input service.PriceInput
	if err := middleware.DecodeJSON(r, &input); err != nil {
		h.logger.Debug("Price decode failed", zap.Error(err))
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.UpdateProductPrice(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Product price updated successfully", product)
}

func (h *ProductHandler) readRequest(w http.ResponseWriter, r *http.Request) (*productRequest, bool) {
	req, err := readProductRequest(w, r, h.maxUpload)
	if err == nil {
		return req, true
	}

	h.logger.Debug("Product request rejected", zap.Error(err))

	var fe *fieldError
	switch {
	case errors.As(err, &fe):
		middleware.RespondWithValidationErrors(w, "Invalid product data", []middleware.ValidationError{
			{Field: fe.Field, Message: "Invalid value"},
		})
	case errors.Is(err, media.ErrInvalidFile):
		middleware.RespondError(w, http.StatusBadRequest, err.Error(), "")
	default:
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	return nil, false
}
