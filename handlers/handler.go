package handlers

import (
	"net/http"
	"os"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/orders"
	"storefront/internal/stores/kv"
	"storefront/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog  *catalog.Conf
	cart     *cart.Conf
	checkout *checkout.Manager
	orders   *orders.Conf
	store    kv.Store
}

func NewHandler(cat *catalog.Conf, cartConf *cart.Conf, manager *checkout.Manager, ledger *orders.Conf, store kv.Store) *Handler {
	return &Handler{
		catalog:  cat,
		cart:     cartConf,
		checkout: manager,
		orders:   ledger,
		store:    store,
	}
}

func API(endpointPrefix string, cat *catalog.Conf, cartConf *cart.Conf, manager *checkout.Manager, ledger *orders.Conf, store kv.Store) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	h := NewHandler(cat, cartConf, manager, ledger, store)
	//apply middleware to all the endpoints using r.Use
	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)

		v1.POST("/cart/items", h.AddToCart)
		v1.GET("/cart", h.GetCart)
		v1.DELETE("/cart/items/:id", h.RemoveFromCart)
		v1.PUT("/cart/items/:id/quantity", h.UpdateQuantity)
		v1.PUT("/cart/items/:id/selected", h.ToggleSelected)

		v1.POST("/checkout", h.StartCheckout)
		v1.POST("/buy-now", h.StartDirectCheckout)
		v1.GET("/checkout/:id", h.GetCheckout)
		v1.PUT("/checkout/:id", h.UpdateCheckout)
		v1.POST("/checkout/:id/confirm", h.ConfirmCheckout)
		v1.DELETE("/checkout/:id", h.CancelCheckout)

		v1.GET("/orders", h.ListOrders)

		v1.GET("/profile/address", h.GetAddress)
		v1.PUT("/profile/address", h.SaveAddress)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
