package unlocks

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/users"
	"github.com/ayotona/rentora/internal/wallet"
)

// Handler provides HTTP endpoints for unlock operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new unlocks handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes sets up auth-required unlock routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/properties/:id/unlock", h.UnlockProperty)
	r.GET("/unlocks", h.MyUnlocks)
}

// UnlockProperty handles POST /api/properties/:id/unlock
func (h *Handler) UnlockProperty(c *gin.Context) {
	u, _ := users.Current(c)

	contact, balance, err := h.service.Unlock(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyUnlocked):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already_unlocked",
				"message": "You have already unlocked this property",
			})
		case errors.Is(err, ErrPropertyNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Property not found",
			})
		case errors.Is(err, wallet.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":   "insufficient_balance",
				"message": "Not enough tokens. Purchase tokens to unlock contacts.",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contact":       contact,
		"token_balance": balance,
	})
}

// MyUnlocks handles GET /api/unlocks
func (h *Handler) MyUnlocks(c *gin.Context) {
	u, _ := users.Current(c)

	views, err := h.service.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unlocks": views,
		"count":   len(views),
	})
}
