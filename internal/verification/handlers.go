package verification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/users"
	"github.com/ayotona/rentora/internal/validation"
)

// Handler provides HTTP endpoints for verification operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new verification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes sets up auth-required verification routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/verification/request", h.SubmitRequest)
	r.GET("/verification/my-request", h.MyRequest)
}

// RegisterAdminRoutes sets up admin-only verification routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/verification/pending", h.ListPending)
	r.GET("/verification/all", h.ListAll)
	r.PUT("/verification/:id/review", h.ReviewRequest)
}

// SubmitRequest handles POST /api/verification/request
func (h *Handler) SubmitRequest(c *gin.Context) {
	u, _ := users.Current(c)

	var in SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("id_card_url", in.IDCardURL),
		validation.Required("selfie_url", in.SelfieURL),
		validation.Required("address", in.Address),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"fields":  errs,
		})
		return
	}

	r, err := h.service.Submit(c.Request.Context(), u, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "duplicate_request",
				"message": "You already have a pending verification request",
			})
		case errors.Is(err, ErrNotEligible):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Only regular users may apply for verification",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": r})
}

// MyRequest handles GET /api/verification/my-request
func (h *Handler) MyRequest(c *gin.Context) {
	u, _ := users.Current(c)

	r, err := h.service.MyRequest(c.Request.Context(), u.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No verification request found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": r})
}

// ListPending handles GET /api/admin/verification/pending
func (h *Handler) ListPending(c *gin.Context) {
	h.renderList(c, func() ([]*Request, error) {
		return h.service.ListPending(c.Request.Context())
	})
}

// ListAll handles GET /api/admin/verification/all
func (h *Handler) ListAll(c *gin.Context) {
	h.renderList(c, func() ([]*Request, error) {
		return h.service.ListAll(c.Request.Context())
	})
}

type reviewRequestBody struct {
	Status string `json:"status"`
}

// ReviewRequest handles PUT /api/admin/verification/:id/review
func (h *Handler) ReviewRequest(c *gin.Context) {
	u, _ := users.Current(c)

	var req reviewRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	r, err := h.service.Review(c.Request.Context(), c.Param("id"), Status(req.Status), u.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Verification request not found",
			})
		case errors.Is(err, ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_status",
				"message": "Status must be approved or rejected",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": r})
}

func (h *Handler) renderList(c *gin.Context, list func() ([]*Request, error)) {
	rs, err := list()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": rs,
		"count":    len(rs),
	})
}
