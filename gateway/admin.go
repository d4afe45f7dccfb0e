package gateway

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminServices are the services behind the back-office tier.
type AdminServices struct {
	Catalog  *service.CatalogService
	SiteInfo *service.SiteInfoService
	Users    *service.UserAdminService
	Orders   *service.OrderService
	// Images serves stored uploads. Nil when uploads live elsewhere.
	Images http.FileSystem
}

type adminHandlers struct {
	*Gateway
	svc AdminServices
}

func (g *Gateway) SetupAdminRoutes(svc AdminServices) {
	g.setupCommonRoutes()
	h := &adminHandlers{Gateway: g, svc: svc}

	// Product routes
	g.router.POST("/add", h.addProduct)
	g.router.GET("/view", h.listProducts)
	g.router.PUT("/editproducts/:id", h.editProduct)
	g.router.DELETE("/delete/:id", h.deleteProduct)

	// Site info routes
	g.router.GET("/site-info", h.getSiteInfo)
	g.router.PUT("/site-info", h.updateSiteInfo)

	// Customer routes
	g.router.GET("/users", h.listUsers)
	g.router.GET("/orders", h.listOrders)
	g.router.PUT("/orders/:userId/:orderId/deliver", h.deliverOrder)

	if svc.Images != nil && strings.HasPrefix(g.config.Uploads.URLPrefix, "/") {
		g.router.StaticFS(g.config.Uploads.URLPrefix, svc.Images)
	}
}

func (h *adminHandlers) addProduct(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.addProductForm(c)
		return
	}

	var in service.ProductInput
	if err := bindStrict(c, &in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	product, err := h.svc.Catalog.Create(c.Request.Context(), in, nil, nil)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *adminHandlers) addProductForm(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	var pf service.ProductForm
	if err := c.ShouldBind(&pf); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	in, err := pf.Input()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var closers []io.Closer
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()
	open := func(fh *multipart.FileHeader) (service.Upload, error) {
		f, err := fh.Open()
		if err != nil {
			return service.Upload{}, err
		}
		closers = append(closers, f)
		return service.Upload{Filename: fh.Filename, Content: f}, nil
	}

	var cover *service.Upload
	if files := form.File["coverImage"]; len(files) > 0 {
		u, err := open(files[0])
		if err != nil {
			badRequest(c, h.logger, err)
			return
		}
		cover = &u
	}
	var gallery []service.Upload
	for _, fh := range form.File["images"] {
		u, err := open(fh)
		if err != nil {
			badRequest(c, h.logger, err)
			return
		}
		gallery = append(gallery, u)
	}

	product, err := h.svc.Catalog.Create(c.Request.Context(), in, cover, gallery)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Debug("Product created from form",
		zap.String("product_id", product.ID.Hex()),
		zap.Int("images", len(gallery)))
	c.JSON(http.StatusCreated, product)
}

func (h *adminHandlers) listProducts(c *gin.Context) {
	products, err := h.svc.Catalog.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *adminHandlers) editProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := bindStrict(c, &patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	product, err := h.svc.Catalog.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *adminHandlers) deleteProduct(c *gin.Context) {
	if err := h.svc.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *adminHandlers) getSiteInfo(c *gin.Context) {
	info, err := h.svc.SiteInfo.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *adminHandlers) updateSiteInfo(c *gin.Context) {
	var patch models.SiteInfoPatch
	if err := bindStrict(c, &patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	info, err := h.svc.SiteInfo.Update(c.Request.Context(), &patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *adminHandlers) listUsers(c *gin.Context) {
	users, err := h.svc.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *adminHandlers) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.ListAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *adminHandlers) deliverOrder(c *gin.Context) {
	order, err := h.svc.Orders.MarkDelivered(c.Request.Context(), c.Param("userId"), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
