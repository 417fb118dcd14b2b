package shop

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/willtrojniak/TabApp/internal/authz"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func shopID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("shopId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shop id"})
		return 0, false
	}
	return id, true
}

func replyError(c *gin.Context, err error) {
	if errors.Is(err, ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *Handler) CreateShop(c *gin.Context) {
	var req ShopCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	shop, err := h.service.CreateShop(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (h *Handler) ListShops(c *gin.Context) {
	shops, err := h.service.ListShops(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

func (h *Handler) GetShop(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	shop, err := h.service.GetShop(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shop not found"})
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *Handler) UpdateShop(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	var req ShopCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	shop, err := h.service.UpdateShop(c.Request.Context(), id, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *Handler) DeleteShop(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteShop(c.Request.Context(), id, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Memberships
// --------------------------------------------------
func (h *Handler) ListMembers(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), id, c.GetString("userID"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) InviteMember(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	var req InviteCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.service.InviteMember(c.Request.Context(), id, c.GetString("userID"), req); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type memberRolesRequest struct {
	Roles authz.Role `json:"roles"`
}

func (h *Handler) UpdateMemberRoles(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	var req memberRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.service.UpdateMemberRoles(c.Request.Context(), id, c.GetString("userID"), c.Param("userId"), req.Roles)
	if err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ConfirmMembership(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	if err := h.service.ConfirmMembership(c.Request.Context(), id, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	err := h.service.RemoveMember(c.Request.Context(), id, c.GetString("userID"), c.Param("userId"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Locations
// --------------------------------------------------
func (h *Handler) CreateLocation(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}

	var req LocationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	l, err := h.service.CreateLocation(c.Request.Context(), id, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}
	locationID, err := strconv.Atoi(c.Param("locationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}

	var req LocationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	l, err := h.service.UpdateLocation(c.Request.Context(), id, locationID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := shopID(c)
	if !ok {
		return
	}
	locationID, err := strconv.Atoi(c.Param("locationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), id, locationID, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
