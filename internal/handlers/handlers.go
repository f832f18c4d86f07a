package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aegis/internal/cache"
	apperrors "aegis/internal/errors"
	"aegis/internal/logger"
	"aegis/internal/models"
	"aegis/internal/service"
)

// ResponseCache is the slice of the Valkey client the handlers use for the
// dashboard stats and client profile reads.
type ResponseCache interface {
	GetStatsRaw(ctx context.Context) ([]byte, error)
	SetStats(ctx context.Context, stats any) error
	InvalidateStats(ctx context.Context) error
	GetProfileRaw(ctx context.Context, email string) ([]byte, error)
	SetProfile(ctx context.Context, email string, profile any) error
}

var _ ResponseCache = (*cache.ValkeyClient)(nil)

type Handlers struct {
	services *service.Services
	valkey   ResponseCache
}

// NewHandlers creates the HTTP handler set. valkey may be nil; caching is
// then skipped.
func NewHandlers(services *service.Services, valkey ResponseCache) *Handlers {
	return &Handlers{
		services: services,
		valkey:   valkey,
	}
}

// respondError maps service errors onto HTTP statuses. Anything unmapped is
// logged and reported as a plain 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error("Request failed",
			"error", err,
			"path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// GetServices returns the catalogue shown on the public site
func (h *Handlers) GetServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": []models.ServiceCatalogItem{
		{Type: models.ServiceEventSecurity, Name: "Event Security", Description: "Crowd and access control for public and private events", MinGuards: 2},
		{Type: models.ServicePersonalProtection, Name: "Personal Protection", Description: "Close protection officers for individuals", MinGuards: 1},
		{Type: models.ServiceCorporateSecurity, Name: "Corporate Security", Description: "Office and facility security staffing", MinGuards: 1},
		{Type: models.ServiceResidentialPatrol, Name: "Residential Patrol", Description: "Scheduled patrols of residential property", MinGuards: 1},
		{Type: models.ServiceAssetEscort, Name: "Asset Escort", Description: "Secure transport escort for high-value assets", MinGuards: 2},
	}})
}
