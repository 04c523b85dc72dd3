package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"go-raffle-api/internal/service"
	apperrors "go-raffle-api/pkg/app_errors"
	"go-raffle-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService   service.AdminService
	catalogService service.CatalogService
	adminToken     string
}

func NewAdminHandler(
	adminService service.AdminService,
	catalogService service.CatalogService,
	adminToken string,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		catalogService: catalogService,
		adminToken:     adminToken,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/", h.requireAdminToken)
	{
		router.POST("reset", h.Reset)
		router.GET("stats", h.Stats)
		router.GET("sales", h.Sales)
	}
}

// requireAdminToken 驗證 X-Admin-Token，常數時間比較
func (h *AdminHandler) requireAdminToken(c *gin.Context) {
	token := c.GetHeader("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		logger.WithComponent("handler").Warn("admin token rejected", zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (h *AdminHandler) Reset(c *gin.Context) {
	count, err := h.adminService.ResetAll(c)
	if err != nil {
		h.handleError(c, err, "Reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"resetCount": count})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.catalogService.Stats(c)
	if err != nil {
		h.handleError(c, err, "Stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Sales(c *gin.Context) {
	records, err := h.adminService.Sales(c)
	if err != nil {
		h.handleError(c, err, "Sales")
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AdminHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	switch {
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		log.Error("Store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, please retry"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
