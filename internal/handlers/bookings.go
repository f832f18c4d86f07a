package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aegis/internal/models"
)

// CreateBooking handles the public booking form
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Bookings.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusCreated, resp)
}

// ListBookings serves the admin bookings table with optional status filter
// and free-text search.
func (h *Handlers) ListBookings(c *gin.Context) {
	status := c.Query("status")
	query := c.Query("query")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pageSize parameter (must be 1-100)"})
		return
	}

	bookings, err := h.services.Bookings.List(c.Request.Context(), status, query, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, models.ListBookingsResponse{Bookings: bookings})
}

// UpdateBookingStatus applies an admin status change
func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, err := h.services.Bookings.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
