package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aegis/internal/models"
)

// AdminLogin authenticates staff and returns a bearer token
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Auth.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ClientLogin authenticates a client by email and booking reference
func (h *Handlers) ClientLogin(c *gin.Context) {
	var req models.ClientLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.services.Auth.ClientLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
