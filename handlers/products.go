package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/catalog"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	products, err := h.catalog.Search(c.Query("q"))
	if err != nil {
		slog.Error("catalog unavailable", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		slog.Error("invalid product id", slog.String(logkey.TraceID, traceId), slog.String("id", c.Param("id")))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product ID must be an integer"})
		return
	}

	product, err := h.catalog.GetByID(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			slog.Error("product not found", slog.String(logkey.TraceID, traceId), slog.Int("ProductID", productID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			slog.Error("catalog unavailable", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load products"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}
