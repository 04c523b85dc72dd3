package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/service"
	apperrors "go-raffle-api/pkg/app_errors"
	"go-raffle-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	allocationService service.AllocationService
	catalogService    service.CatalogService
	purchasePassword  string
}

func NewTicketHandler(
	allocationService service.AllocationService,
	catalogService service.CatalogService,
	purchasePassword string,
) *TicketHandler {
	return &TicketHandler{
		allocationService: allocationService,
		catalogService:    catalogService,
		purchasePassword:  purchasePassword,
	}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/")
	{
		router.GET("numbers", h.ListNumbers)
		router.POST("purchase", h.Purchase)
	}
}

func (h *TicketHandler) ListNumbers(c *gin.Context) {
	filter := model.TicketFilter(c.DefaultQuery("state", string(model.FilterAll)))

	tickets, err := h.catalogService.List(c, filter)
	if err != nil {
		h.handleError(c, err, "ListNumbers")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) Purchase(c *gin.Context) {
	var req model.PurchaseTicketsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	// 共享密碼先驗，不對就不碰票池
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.purchasePassword)) != 1 {
		logger.WithComponent("handler").Warn("purchase rejected: bad password",
			zap.String("buyer", req.Buyer))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	receipt, err := h.allocationService.Purchase(c, req.PurchaseRequest)
	if err != nil {
		h.handleError(c, err, "Purchase")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"updatedNumbers": receipt.Numbers,
	})
}

func (h *TicketHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var unknownErr *apperrors.UnknownTicketError
	var soldErr *apperrors.AlreadySoldError

	switch {
	case errors.As(err, &unknownErr):
		log.Warn("Unknown ticket numbers")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          err.Error(),
			"unknownNumbers": unknownErr.Numbers,
		})
	case errors.As(err, &soldErr):
		log.Warn("Tickets already sold")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"soldNumbers": soldErr.Numbers,
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		log.Error("Store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, please retry"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
