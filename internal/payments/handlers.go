package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/metrics"
	"github.com/ayotona/rentora/internal/users"
)

// SignatureHeader carries Korapay's HMAC of the raw webhook body.
const SignatureHeader = "X-Korapay-Signature"

const maxWebhookBody = 1 << 20

// Handler provides HTTP endpoints for payment operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up the webhook route. It is public: the signature
// is the authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/korapay", h.Webhook)
}

// RegisterProtectedRoutes sets up auth-required payment routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/tokens/purchase", h.PurchaseTokens)
	r.GET("/payments/verify/:reference", h.VerifyPayment)
	r.GET("/transactions", h.MyTransactions)
	if h.service.SimulationEnabled() {
		r.POST("/payments/simulate/:reference", h.SimulatePayment)
	}
}

// RegisterAdminRoutes sets up admin-only payment routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/transactions", h.AllTransactions)
}

// VerifySignature checks the provider HMAC over the raw body. An empty
// secret skips verification.
func VerifySignature(secret string, body []byte, header string) error {
	if secret == "" {
		return nil
	}
	if header == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(header)) {
		return ErrInvalidSignature
	}
	return nil
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference        string `json:"reference"`
		PaymentReference string `json:"payment_reference"`
	} `json:"data"`
}

// Webhook handles POST /api/webhooks/korapay
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Could not read request body",
		})
		return
	}

	if err := VerifySignature(h.service.WebhookSecret(), body, c.GetHeader(SignatureHeader)); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unverified", "rejected").Inc()
		logging.L(c.Request.Context()).Warn("webhook signature rejected")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_signature",
			"message": "Webhook signature verification failed",
		})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Event == "" || payload.Data.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Malformed webhook payload",
		})
		return
	}

	if err := h.service.HandleEvent(c.Request.Context(), payload.Event, payload.Data.Reference, payload.Data.PaymentReference); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type purchaseRequest struct {
	Quantity int64 `json:"quantity"`
}

// PurchaseTokens handles POST /api/tokens/purchase
func (h *Handler) PurchaseTokens(c *gin.Context) {
	u, _ := users.Current(c)

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	checkout, err := h.service.InitiatePurchase(c.Request.Context(), u.ID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_quantity",
				"message": "Quantity must be a positive number of tokens",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, checkout)
}

// VerifyPayment handles GET /api/payments/verify/:reference
func (h *Handler) VerifyPayment(c *gin.Context) {
	v, err := h.service.Verify(c.Request.Context(), c.Param("reference"))
	if err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No payment found for this reference",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, v)
}

// SimulatePayment handles POST /api/payments/simulate/:reference
func (h *Handler) SimulatePayment(c *gin.Context) {
	if err := h.service.Simulate(c.Request.Context(), c.Param("reference")); err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No payment found for this reference",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "simulated"})
}

// MyTransactions handles GET /api/transactions
func (h *Handler) MyTransactions(c *gin.Context) {
	u, _ := users.Current(c)

	txs, err := h.service.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// AllTransactions handles GET /api/admin/transactions
func (h *Handler) AllTransactions(c *gin.Context) {
	txs, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, txs)
}
