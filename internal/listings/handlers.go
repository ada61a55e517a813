package listings

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/users"
	"github.com/ayotona/rentora/internal/validation"
)

// UnlockChecker reports whether a user has unlocked a property's contact.
type UnlockChecker interface {
	IsUnlocked(ctx context.Context, userID, propertyID string) (bool, error)
}

// Handler provides HTTP endpoints for listing operations.
type Handler struct {
	service *Service
	unlocks UnlockChecker
}

// NewHandler creates a new listings handler.
func NewHandler(service *Service, unlocks UnlockChecker) *Handler {
	return &Handler{service: service, unlocks: unlocks}
}

// RegisterRoutes sets up public listing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/properties", h.ListProperties)
	r.GET("/properties/:id/public", h.GetPropertyPublic)
}

// RegisterProtectedRoutes sets up auth-required listing routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/properties/:id", h.GetProperty)
	r.GET("/my-listings", h.MyListings)
	r.POST("/properties", users.RequireRoles(users.RoleAgent, users.RoleAdmin), h.CreateProperty)
	r.PUT("/properties/:id", users.RequireRoles(users.RoleAgent, users.RoleAdmin), h.UpdateProperty)
}

// RegisterAdminRoutes sets up admin-only listing routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/properties/pending", h.ListPending)
	r.GET("/properties/all", h.ListAll)
	r.PUT("/properties/:id/review", h.ReviewProperty)
	r.DELETE("/properties/:id", h.DeleteProperty)
}

// ListProperties handles GET /api/properties
//
// Public catalog: approved listings only unless an explicit status filter
// is given by an authenticated admin, and always redacted.
func (h *Handler) ListProperties(c *gin.Context) {
	filter := Filter{
		Status:       StatusApproved,
		PropertyType: c.Query("property_type"),
		Location:     c.Query("location"),
	}
	if v := c.Query("min_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MinPrice = n
		}
	}
	if v := c.Query("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MaxPrice = n
		}
	}

	props, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	views := make([]*Property, 0, len(props))
	for _, p := range props {
		views = append(views, Redacted(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": views,
		"count":      len(views),
	})
}

// GetPropertyPublic handles GET /api/properties/:id/public
func (h *Handler) GetPropertyPublic(c *gin.Context) {
	p, err := h.service.GetApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": Redacted(p)})
}

// GetProperty handles GET /api/properties/:id
func (h *Handler) GetProperty(c *gin.Context) {
	u, _ := users.Current(c)

	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	// Pending and rejected listings are visible to their agent and admins only.
	if p.Status != StatusApproved && u.Role != users.RoleAdmin && p.AgentID != u.ID {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Property not found",
		})
		return
	}

	unlocked := false
	if u.Role == users.RoleUser && h.unlocks != nil {
		unlocked, _ = h.unlocks.IsUnlocked(c.Request.Context(), u.ID, p.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"property": ViewFor(p, u, unlocked),
		"unlocked": unlocked,
	})
}

// MyListings handles GET /api/my-listings
func (h *Handler) MyListings(c *gin.Context) {
	u, _ := users.Current(c)

	props, err := h.service.ListByAgent(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": props,
		"count":      len(props),
	})
}

// CreateProperty handles POST /api/properties
func (h *Handler) CreateProperty(c *gin.Context) {
	u, _ := users.Current(c)

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("title", in.Title),
		validation.Required("location", in.Location),
		validation.Required("property_type", in.PropertyType),
		validation.Required("contact_name", in.ContactName),
		validation.Required("contact_phone", in.ContactPhone),
		validation.Positive("price", in.Price),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"fields":  errs,
		})
		return
	}
	if !validation.IsValidPhone(in.ContactPhone) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "contact_phone is not a valid phone number",
		})
		return
	}

	p, err := h.service.Create(c.Request.Context(), u, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"property": p})
}

// UpdateProperty handles PUT /api/properties/:id
func (h *Handler) UpdateProperty(c *gin.Context) {
	u, _ := users.Current(c)

	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	p, err := h.service.Update(c.Request.Context(), u, c.Param("id"), in)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": p})
}

// ListPending handles GET /api/admin/properties/pending
func (h *Handler) ListPending(c *gin.Context) {
	props, err := h.service.List(c.Request.Context(), Filter{Status: StatusPending})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": props,
		"count":      len(props),
	})
}

// ListAll handles GET /api/admin/properties/all
func (h *Handler) ListAll(c *gin.Context) {
	props, err := h.service.List(c.Request.Context(), Filter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": props,
		"count":      len(props),
	})
}

type reviewRequest struct {
	Status string `json:"status"`
}

// ReviewProperty handles PUT /api/admin/properties/:id/review
func (h *Handler) ReviewProperty(c *gin.Context) {
	u, _ := users.Current(c)

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	p, err := h.service.Review(c.Request.Context(), c.Param("id"), Status(req.Status), u.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": p})
}

// DeleteProperty handles DELETE /api/admin/properties/:id
func (h *Handler) DeleteProperty(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Property not found",
		})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Only the listing agent or an admin may modify this property",
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
}
