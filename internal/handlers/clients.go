package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aegis/internal/logger"
	"aegis/internal/middleware"
)

// clientEmail pulls the authenticated client's email out of the request
// principal. The auth middleware guarantees it is present on client routes.
func clientEmail(c *gin.Context) (string, bool) {
	principal, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return principal.Subject, true
}

// GetClientProfile serves the client read-model, cached in Valkey per email
func (h *Handlers) GetClientProfile(c *gin.Context) {
	email, ok := clientEmail(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.valkey != nil {
		if raw, err := h.valkey.GetProfileRaw(ctx, email); err == nil && raw != nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	profile, err := h.services.Clients.Profile(ctx, email)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.valkey != nil {
		if err := h.valkey.SetProfile(ctx, email, profile); err != nil {
			logger.WithContext(ctx).Error("Failed to cache client profile", "error", err)
		}
	}

	c.JSON(http.StatusOK, profile)
}

// GetClientBookings lists the authenticated client's own bookings
func (h *Handlers) GetClientBookings(c *gin.Context) {
	email, ok := clientEmail(c)
	if !ok {
		return
	}

	resp, err := h.services.Clients.Bookings(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetClientPayments lists payment records across the client's bookings
func (h *Handlers) GetClientPayments(c *gin.Context) {
	email, ok := clientEmail(c)
	if !ok {
		return
	}

	resp, err := h.services.Clients.Payments(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
