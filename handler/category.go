package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meninojhony/modec-challenger/service"
)

type CategoryHandler struct {
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type categoryUpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func categoryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "ValidationError", "Invalid category id")
		return 0, false
	}
	return id, true
}

// List returns all categories ordered by name
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Get returns a single category
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Create adds a new category
func (h *CategoryHandler) Create(c *gin.Context) {
	var input categoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "ValidationError", "Invalid request body: "+err.Error())
		return
	}

	category, err := h.categories.Create(c.Request.Context(), input.Name, input.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Update renames or re-describes a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	var input categoryUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "ValidationError", "Invalid request body: "+err.Error())
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, input.Name, input.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete removes an unused category. Deletion must be confirmed with
// ?confirmation=true and is refused while contracts reference the category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	if c.Query("confirmation") != "true" {
		apiError(c, http.StatusBadRequest, "ValidationError", "Deletion requires ?confirmation=true")
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
