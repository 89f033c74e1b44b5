package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/decoraops/quotation-service/internal/assignment"
	"github.com/decoraops/quotation-service/internal/extraction"
	"github.com/decoraops/quotation-service/internal/model"
	"github.com/decoraops/quotation-service/internal/pricing"
	"github.com/decoraops/quotation-service/internal/service"
	"github.com/decoraops/quotation-service/internal/workflow"
)

type Handler struct {
	auth       *service.AuthService
	quotations *service.QuotationService
	catalog    *service.CatalogService
	log        zerolog.Logger
}

func NewHandler(auth *service.AuthService, quotations *service.QuotationService, catalog *service.CatalogService, log zerolog.Logger) *Handler {
	return &Handler{auth: auth, quotations: quotations, catalog: catalog, log: log}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var svcErr *extraction.ServiceError
	var partial *assignment.PartialAssignmentError

	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidArtifact),
		errors.Is(err, assignment.ErrValidation),
		errors.Is(err, pricing.ErrInvalidRate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrSuperseded),
		errors.Is(err, workflow.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &partial):
		// Customer exists; only quotation persistence needs a retry.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      partial.Error(),
			"customerId": partial.CustomerID.String(),
		})
	case errors.As(err, &svcErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": svcErr.Error(), "upstreamStatus": svcErr.StatusCode})
	case errors.Is(err, extraction.ErrNetwork),
		errors.Is(err, extraction.ErrDecode),
		errors.Is(err, pricing.ErrInvalidLineItem):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
