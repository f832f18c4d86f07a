package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aegis/internal/models"
)

// ListInvoices serves the admin invoices table
func (h *Handlers) ListInvoices(c *gin.Context) {
	resp, err := h.services.Invoices.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateInvoice records a draft invoice from the admin form
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Invoices.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusCreated, resp)
}

// SendInvoice registers a draft invoice with the billing processor and marks
// it sent.
func (h *Handlers) SendInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	invoice, err := h.services.Invoices.Send(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// UpdateInvoiceStatus marks an invoice paid or cancels it
func (h *Handlers) UpdateInvoiceStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	var req models.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	invoice, err := h.services.Invoices.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}
