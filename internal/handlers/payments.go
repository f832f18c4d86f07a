package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aegis/internal/logger"
	"aegis/internal/models"
)

// ListPayments serves the admin payments table
func (h *Handlers) ListPayments(c *gin.Context) {
	resp, err := h.services.Payments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecordPayment adds a received amount against a payment record
func (h *Handlers) RecordPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	payment, err := h.services.Payments.Record(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// UpdatePaymentStatus sets the authoritative payment status
func (h *Handlers) UpdatePaymentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req models.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.services.Payments.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// GetStats serves the admin dashboard aggregates, cached in Valkey
func (h *Handlers) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	if h.valkey != nil {
		if raw, err := h.valkey.GetStatsRaw(ctx); err == nil && raw != nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	stats, err := h.services.Payments.DashboardStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.valkey != nil {
		if err := h.valkey.SetStats(ctx, stats); err != nil {
			logger.WithContext(ctx).Error("Failed to cache stats", "error", err)
		}
	}

	c.JSON(http.StatusOK, stats)
}

// invalidateStats drops the cached dashboard after any write that moves its
// numbers.
func (h *Handlers) invalidateStats(c *gin.Context) {
	if h.valkey == nil {
		return
	}
	if err := h.valkey.InvalidateStats(c.Request.Context()); err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to invalidate stats cache", "error", err)
	}
}
