package gateway

import (
	"net/http"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
)

// ShopServices are the services behind the customer-facing tier.
type ShopServices struct {
	Auth     *service.AuthService
	Cart     *service.CartService
	Orders   *service.OrderService
	Catalog  *service.CatalogService
	SiteInfo *service.SiteInfoService
}

type shopHandlers struct {
	*Gateway
	svc ShopServices
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (g *Gateway) SetupShopRoutes(svc ShopServices) {
	g.setupCommonRoutes()
	h := &shopHandlers{Gateway: g, svc: svc}

	// Auth routes
	g.router.POST("/signup", h.signup)
	g.router.POST("/login", h.login)

	// Catalog routes
	g.router.GET("/products", h.listProducts)
	g.router.GET("/featured", h.featured)
	g.router.GET("/hotdeals", h.hotDeals)
	g.router.GET("/view/:id", h.viewProduct)
	g.router.GET("/categories", h.categories)

	// Customer routes
	customer := g.router.Group("/", authMiddleware(svc.Auth, g.logger))
	{
		customer.POST("/cart/add", h.addToCart)
		customer.GET("/cart", h.getCart)
		customer.PUT("/cart/:id", h.updateCartItem)
		customer.DELETE("/cart/:id", h.removeCartItem)
		customer.POST("/checkout", h.checkout)
		customer.GET("/orders", h.listOrders)
	}
}

func (h *shopHandlers) signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Auth.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *shopHandlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *shopHandlers) listProducts(c *gin.Context) {
	products, err := h.svc.Catalog.List(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *shopHandlers) featured(c *gin.Context) {
	products, err := h.svc.Catalog.Featured(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *shopHandlers) hotDeals(c *gin.Context) {
	products, err := h.svc.Catalog.HotDeals(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *shopHandlers) viewProduct(c *gin.Context) {
	product, err := h.svc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *shopHandlers) categories(c *gin.Context) {
	categories, err := h.svc.SiteInfo.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *shopHandlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	items, err := h.svc.Cart.Add(c.Request.Context(), currentUser(c).ID, req.ProductID, quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": items})
}

func (h *shopHandlers) getCart(c *gin.Context) {
	items, err := h.svc.Cart.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *shopHandlers) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.Quantity == nil {
		respondError(c, h.logger, errs.Validationf("quantity is required"))
		return
	}

	items, err := h.svc.Cart.UpdateQuantity(c.Request.Context(), currentUser(c).ID, c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *shopHandlers) removeCartItem(c *gin.Context) {
	items, err := h.svc.Cart.Remove(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *shopHandlers) checkout(c *gin.Context) {
	order, err := h.svc.Orders.Checkout(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *shopHandlers) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.ListOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
