package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decoraops/quotation-service/internal/http/middleware"
	"github.com/decoraops/quotation-service/internal/model"
)

func (h *Handler) listProducts(c *gin.Context) {
	principal := middleware.Principal(c)
	products, err := h.catalog.ListProducts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) addProduct(c *gin.Context) {
	var product model.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.Principal(c)
	created, err := h.catalog.AddProduct(c.Request.Context(), principal, product)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	principal := middleware.Principal(c)
	if err := h.catalog.DeleteProduct(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Product deleted"})
}
