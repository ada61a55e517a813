package wallet

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/users"
)

// Handler provides HTTP endpoints for wallet operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new wallet handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes sets up auth-required wallet routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/wallet", h.GetWallet)
}

// RegisterAdminRoutes sets up admin-only wallet routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/wallets/:userID", h.GetUserWallet)
}

// GetWallet handles GET /api/wallet
func (h *Handler) GetWallet(c *gin.Context) {
	u, _ := users.Current(c)

	w, err := h.service.Get(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": w})
}

// GetUserWallet handles GET /api/admin/wallets/:userID
func (h *Handler) GetUserWallet(c *gin.Context) {
	w, err := h.service.Get(c.Request.Context(), c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": w})
}
