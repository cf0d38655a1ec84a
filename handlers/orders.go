package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": h.orders.List()})
}
