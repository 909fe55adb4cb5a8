package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/repository"
)

type CategoryHandler struct {
	Categories CategoryStore
}

// NewCategoryHandler создает обработчик категорий.
func NewCategoryHandler(categories CategoryStore) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// List возвращает категории пользователя, q фильтрует для автодополнения.
func (h *CategoryHandler) List(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	categories, err := h.Categories.List(c.Request().Context(), user.ID, c.QueryParam("q"))
	if err != nil {
		return serverError(c, err)
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}

	return c.JSON(http.StatusOK, response)
}

// Create явно создает категорию.
func (h *CategoryHandler) Create(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Name = repository.NormalizeName(req.Name)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, categoryNameMessage(req.Name))
	}

	category, err := h.Categories.Create(c.Request().Context(), user.ID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "Category already exists")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "Category name is required")
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

func toCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{ID: category.ID, Name: category.Name}
}
