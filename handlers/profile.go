package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/stores/kv"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// GetAddress returns the saved shipping address, empty when never saved.
func (h *Handler) GetAddress(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	address, err := h.store.Get(c.Request.Context(), kv.KeyUserAddress)
	if err != nil && !errors.Is(err, kv.ErrNoKey) {
		slog.Error("error loading address", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to load address"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": string(address)})
}

// SaveAddress overwrites the saved shipping address used to prepopulate
// checkout.
func (h *Handler) SaveAddress(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.store.Set(c.Request.Context(), kv.KeyUserAddress, []byte(request.Address)); err != nil {
		slog.Error("error saving address", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to save address"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address saved", "address": request.Address})
}
