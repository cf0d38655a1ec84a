package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func sessionView(s checkout.Session) gin.H {
	return gin.H{
		"session":          s,
		"totals":           s.Totals(),
		"delivery_options": checkout.DeliveryOptions(),
		"payment_methods":  checkout.PaymentMethods(),
	}
}

// StartCheckout opens a session over the selected cart lines.
func (h *Handler) StartCheckout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	session, err := h.checkout.StartFromCart(c.Request.Context())
	if err != nil {
		if errors.Is(err, checkout.ErrEmptySelection) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Please select at least one product to checkout!"})
			return
		}
		slog.Error("error starting checkout", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to start checkout"})
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

// StartDirectCheckout opens a single-item buy-now session.
func (h *Handler) StartDirectCheckout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		ProductID int `json:"product_id" validate:"required,gt=0"`
		Quantity  int `json:"quantity" validate:"gte=0"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := validator.New().Struct(request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID and quantity must be valid"})
		return
	}

	session, err := h.checkout.StartDirectBuy(c.Request.Context(), request.ProductID, request.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		case errors.Is(err, catalog.ErrUnavailable):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Products are unavailable right now"})
		default:
			slog.Error("error starting direct checkout", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to start checkout"})
		}
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) GetCheckout(c *gin.Context) {
	session, err := h.checkout.Get(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Checkout session not found"})
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

// UpdateCheckout applies any of the reviewable choices present in the body:
// delivery method, payment method, address, notes, or a direct-buy item
// quantity step.
func (h *Handler) UpdateCheckout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionID := c.Param("id")

	var request struct {
		DeliveryMethod  string  `json:"delivery_method"`
		PaymentMethod   string  `json:"payment_method"`
		ShippingAddress *string `json:"shipping_address"`
		Notes           *string `json:"notes"`
		ProductID       int     `json:"product_id"`
		Quantity        *int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var (
		session checkout.Session
		err     error
	)
	apply := func(fn func() (checkout.Session, error)) bool {
		if err != nil {
			return false
		}
		session, err = fn()
		return err == nil
	}

	if request.DeliveryMethod != "" {
		apply(func() (checkout.Session, error) { return h.checkout.SetDelivery(sessionID, request.DeliveryMethod) })
	}
	if request.PaymentMethod != "" {
		apply(func() (checkout.Session, error) { return h.checkout.SetPayment(sessionID, request.PaymentMethod) })
	}
	if request.ShippingAddress != nil {
		apply(func() (checkout.Session, error) { return h.checkout.SetAddress(sessionID, *request.ShippingAddress) })
	}
	if request.Notes != nil {
		apply(func() (checkout.Session, error) { return h.checkout.SetNotes(sessionID, *request.Notes) })
	}
	if request.Quantity != nil {
		apply(func() (checkout.Session, error) {
			return h.checkout.SetItemQuantity(sessionID, request.ProductID, *request.Quantity)
		})
	}

	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Checkout session not found"})
		case errors.Is(err, checkout.ErrUnknownDelivery):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Unknown delivery method"})
		case errors.Is(err, checkout.ErrUnknownPayment):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Unknown payment method"})
		default:
			slog.Error("error updating checkout", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update checkout"})
		}
		return
	}
	if session.ID == "" {
		// Empty body: nothing changed, return the current view.
		session, err = h.checkout.Get(sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Checkout session not found"})
			return
		}
	}

	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) ConfirmCheckout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		ShippingAddress string `json:"shipping_address"`
		Notes           string `json:"notes"`
	}
	// Body is optional; the session may already carry the address.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
	}

	order, err := h.checkout.Confirm(c.Request.Context(), c.Param("id"), request.ShippingAddress, request.Notes)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Checkout session not found"})
		case errors.Is(err, checkout.ErrAddressRequired):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Shipping address is required!"})
		default:
			slog.Error("error confirming checkout", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to place order"})
		}
		return
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId),
		slog.String("OrderID", order.ID), slog.Int64("Total", order.Total))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Order Successful!",
		"order_id":   order.ID,
		"item_count": len(order.Items),
		"total":      order.Total,
		"order":      order,
	})
}

func (h *Handler) CancelCheckout(c *gin.Context) {
	// Cancelling an unknown or already-closed session is a no-op.
	h.checkout.Cancel(c.Param("id"))
	c.Status(http.StatusNoContent)
}
