package tab

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
	switch {
	case errors.Is(err, shop.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrTabClosed),
		errors.Is(err, ErrTabNotConfirmed),
		errors.Is(err, ErrTabInactive),
		errors.Is(err, ErrBillClosed),
		errors.Is(err, ErrNoPendingChanges):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (h *Handler) CreateTab(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	var req TabCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	t, err := h.service.CreateTab(c.Request.Context(), shopID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTabs(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}

	tabs, err := h.service.ListTabs(c.Request.Context(), shopID, c.GetString("userID"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, tabs)
}

func (h *Handler) GetTab(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}

	d, err := h.service.GetTab(c.Request.Context(), shopID, tabID, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, shop.ErrForbidden) {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "tab not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateTab(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}

	var req TabCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	d, err := h.service.UpdateTab(c.Request.Context(), shopID, tabID, c.GetString("userID"), req)
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) ApproveTab(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}

	d, err := h.service.Approve(c.Request.Context(), shopID, tabID, c.GetString("userID"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) CloseTab(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}

	d, err := h.service.Close(c.Request.Context(), shopID, tabID, c.GetString("userID"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) AddOrder(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}

	var req Selection
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.service.AddOrder(c.Request.Context(), shopID, tabID, c.GetString("userID"), req); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveOrder(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}

	var req Selection
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.service.RemoveOrder(c.Request.Context(), shopID, tabID, c.GetString("userID"), req); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CloseBill(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}

	if err := h.service.CloseBill(c.Request.Context(), shopID, tabID, billID, c.GetString("userID")); err != nil {
		replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ExportBill(c *gin.Context) {
	shopID, ok := pathID(c, "shopId")
	if !ok {
		return
	}
	tabID, ok := pathID(c, "tabId")
	if !ok {
		return
	}
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}

	url, err := h.service.ExportBill(c.Request.Context(), shopID, tabID, billID, c.GetString("userID"))
	if err != nil {
		replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
