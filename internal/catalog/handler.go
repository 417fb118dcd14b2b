package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/willtrojniak/TabApp/internal/shop"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func replyError(c *gin.Context, err error) {
	if errors.Is(err, shop.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// --------------------------------------------------
// Items
// --------------------------------------------------
func (h *Handler) ListItems(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), shopID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetItem(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), shopID, itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateItem(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	var req ItemCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), shopID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	var req ItemCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), shopID, itemID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), shopID, itemID, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Variants
// --------------------------------------------------
func (h *Handler) CreateVariant(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	var req VariantCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	v, err := h.service.CreateVariant(c.Request.Context(), shopID, itemID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) UpdateVariant(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	variantID, ok := pathID(c, "variantId")
	if !ok {
		return
	}

	var req VariantCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	v, err := h.service.UpdateVariant(c.Request.Context(), shopID, itemID, variantID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVariant(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	variantID, ok := pathID(c, "variantId")
	if !ok {
		return
	}

	if err := h.service.DeleteVariant(c.Request.Context(), shopID, itemID, variantID, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Categories
// --------------------------------------------------
func (h *Handler) ListCategories(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	categories, err := h.service.ListCategories(c.Request.Context(), shopID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	var req CategoryCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cat, err := h.service.CreateCategory(c.Request.Context(), shopID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}

	var req CategoryCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cat, err := h.service.UpdateCategory(c.Request.Context(), shopID, categoryID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), shopID, categoryID, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Substitution groups
// --------------------------------------------------
func (h *Handler) ListSubstitutionGroups(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	groups, err := h.service.ListSubstitutionGroups(c.Request.Context(), shopID)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) CreateSubstitutionGroup(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	var req SubstitutionGroupCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	g, err := h.service.CreateSubstitutionGroup(c.Request.Context(), shopID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) UpdateSubstitutionGroup(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}

	var req SubstitutionGroupCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	g, err := h.service.UpdateSubstitutionGroup(c.Request.Context(), shopID, groupID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteSubstitutionGroup(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}

	if err := h.service.DeleteSubstitutionGroup(c.Request.Context(), shopID, groupID, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
