package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/decoraops/quotation-service/internal/http/middleware"
	"github.com/decoraops/quotation-service/internal/model"
)

// generateQuotation accepts a multipart submission with a `file` part and/or
// a `text` field and runs the ingestion pipeline. Exactly one of the two must
// be present; the service rejects anything else before contacting the
// extraction service.
func (h *Handler) generateQuotation(c *gin.Context) {
	principal := middleware.Principal(c)

	var artifact model.RawArtifact
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
			return
		}
		artifact.FileName = fileHeader.Filename
		artifact.MIMEType = fileHeader.Header.Get("Content-Type")
		artifact.Data = data
	}
	artifact.Text = c.PostForm("text")

	draft, err := h.quotations.Ingest(c.Request.Context(), principal, artifact)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *Handler) workflowStatus(c *gin.Context) {
	principal := middleware.Principal(c)
	c.JSON(http.StatusOK, h.quotations.Status(principal))
}

func (h *Handler) abandonDraft(c *gin.Context) {
	principal := middleware.Principal(c)
	if err := h.quotations.Abandon(principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Draft discarded"})
}

func (h *Handler) requestAssignment(c *gin.Context) {
	principal := middleware.Principal(c)
	if err := h.quotations.RequestAssignment(principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.quotations.Status(principal))
}

func (h *Handler) confirmAssignment(c *gin.Context) {
	principal := middleware.Principal(c)

	var input model.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	persisted, err := h.quotations.ConfirmAssignment(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Quotation saved", "id": persisted.ID.String()})
}

func (h *Handler) cancelAssignment(c *gin.Context) {
	principal := middleware.Principal(c)
	if err := h.quotations.CancelAssignment(principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.quotations.Status(principal))
}

func (h *Handler) viewQuotation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	quotation, err := h.quotations.GetQuotation(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotation)
}

func (h *Handler) updateQuotationStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.Principal(c)
	if err := h.quotations.UpdateStatus(c.Request.Context(), principal, id, req.Status); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Status updated"})
}

func (h *Handler) listQuotationsByCustomer(c *gin.Context) {
	customerID, ok := parseID(c, "customerId")
	if !ok {
		return
	}
	quotations, err := h.quotations.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotations)
}

func (h *Handler) listQuotationsBySales(c *gin.Context) {
	salesID, ok := parseID(c, "salesId")
	if !ok {
		return
	}
	principal := middleware.Principal(c)
	quotations, err := h.quotations.ListBySales(c.Request.Context(), principal, salesID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotations)
}

func (h *Handler) exportQuotationPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	principal := middleware.Principal(c)
	result, err := h.quotations.ExportQuotationPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) exportSalesBook(c *gin.Context) {
	salesID, ok := parseID(c, "salesId")
	if !ok {
		return
	}
	principal := middleware.Principal(c)
	result, err := h.quotations.ExportSalesBook(c.Request.Context(), principal, salesID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}
