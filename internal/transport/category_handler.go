package transport

import (
	"net/http"

	"food-catalog/internal/domain"
	"food-catalog/internal/middleware"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{id}", h.GetCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if categories == nil {
		categories = []*domain.Category{}
	}

	middleware.RespondList(w, "", categories, len(categories))
}

// GetCategory handles GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}

	category, err := h.categoryService.GetCategory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if category.Products == nil {
		category.Products = []*domain.Product{}
	}

	middleware.RespondSuccess(w, http.StatusOK, "", category)
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input service.CategoryInput
	if err := middleware.DecodeJSON(r, &input); err != nil {
		h.logger.Debug("Category decode failed", zap.Error(err))
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}

	var input service.CategoryInput
	if err := middleware.DecodeJSON(r, &input); err != nil {
		h.logger.Debug("Category decode failed", zap.Error(err))
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Category deleted successfully", nil)
}
