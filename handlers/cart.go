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
	"github.com/go-playground/validator/v10"
)

func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		ProductID int `json:"product_id" validate:"required,gt=0"`
		Quantity  int `json:"quantity" validate:"gte=0,lte=99"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := validator.New().Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID and quantity must be valid"})
		return
	}

	item, err := h.cart.AddItem(c.Request.Context(), request.ProductID, request.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			// Adding an unknown product is a user-visible miss, not a crash.
			slog.Error("product not in catalog", slog.String(logkey.TraceID, traceId), slog.Int("ProductID", request.ProductID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		case errors.Is(err, catalog.ErrUnavailable):
			slog.Error("catalog unavailable", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Products are unavailable right now"})
		default:
			slog.Error("error adding product to cart", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to add product to cart"})
		}
		return
	}

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId),
		slog.Int("ProductID", item.ID), slog.Int("Quantity", item.Quantity))

	c.JSON(http.StatusOK, gin.H{
		"message": item.Title + " added to cart successfully!",
		"item":    item,
		"count":   h.cart.TotalItemCount(),
	})
}

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":    h.cart.Items(),
		"subtotal": h.cart.SelectedSubtotal(),
		"count":    h.cart.TotalItemCount(),
	})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID must be an integer"})
		return
	}

	removed, err := h.cart.RemoveItem(c.Request.Context(), productID)
	if err != nil {
		slog.Error("error removing product from cart", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove product from cart"})
		return
	}

	message := "Product not in cart"
	if removed {
		message = "Product removed from cart!"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"removed": removed,
		"count":   h.cart.TotalItemCount(),
	})
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID must be an integer"})
		return
	}

	var request struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := validator.New().Struct(request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
		return
	}

	if err := h.cart.SetQuantity(c.Request.Context(), productID, request.Quantity); err != nil {
		slog.Error("error updating quantity", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update quantity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    h.cart.Items(),
		"subtotal": h.cart.SelectedSubtotal(),
		"count":    h.cart.TotalItemCount(),
	})
}

func (h *Handler) ToggleSelected(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID must be an integer"})
		return
	}

	if err := h.cart.ToggleSelected(c.Request.Context(), productID); err != nil {
		slog.Error("error toggling selection", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update selection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    h.cart.Items(),
		"subtotal": h.cart.SelectedSubtotal(),
	})
}
