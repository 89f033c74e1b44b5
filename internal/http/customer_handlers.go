package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decoraops/quotation-service/internal/http/middleware"
	"github.com/decoraops/quotation-service/internal/model"
)

func (h *Handler) createCustomer(c *gin.Context) {
	var input model.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.Principal(c)
	customer, err := h.catalog.CreateCustomer(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) customerByEmail(c *gin.Context) {
	customer, err := h.catalog.GetCustomerByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) listCustomersForSales(c *gin.Context) {
	salesID, ok := parseID(c, "salesId")
	if !ok {
		return
	}
	principal := middleware.Principal(c)
	customers, err := h.catalog.ListCustomersForSales(c.Request.Context(), principal, salesID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) listAllCustomers(c *gin.Context) {
	principal := middleware.Principal(c)
	customers, err := h.catalog.ListAllCustomers(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}
