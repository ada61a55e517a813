package inspections

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/users"
)

// Handler provides HTTP endpoints for inspection operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new inspections handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes sets up auth-required inspection routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/inspections", h.RequestInspection)
	r.GET("/inspections/mine", h.MyInspections)
	r.GET("/inspections/assigned", users.RequireRoles(users.RoleAgent, users.RoleAdmin), h.AssignedInspections)
	r.PUT("/inspections/:id", users.RequireRoles(users.RoleAgent, users.RoleAdmin), h.UpdateInspection)
	r.GET("/inspections/:id/agent-contact", h.GetAgentContact)
}

// RegisterAdminRoutes sets up admin-only inspection routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/inspections", h.AllInspections)
}

type requestInspectionBody struct {
	PropertyID     string    `json:"property_id"`
	InspectionDate time.Time `json:"inspection_date"`
}

// RequestInspection handles POST /api/inspections
func (h *Handler) RequestInspection(c *gin.Context) {
	u, _ := users.Current(c)

	var req requestInspectionBody
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "property_id and inspection_date are required",
		})
		return
	}
	if req.InspectionDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "inspection_date is required",
		})
		return
	}

	booking, err := h.service.Request(c.Request.Context(), u, req.PropertyID, req.InspectionDate)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// MyInspections handles GET /api/inspections/mine
func (h *Handler) MyInspections(c *gin.Context) {
	u, _ := users.Current(c)
	h.renderList(c, func() ([]*Inspection, error) {
		return h.service.ListByUser(c.Request.Context(), u.ID)
	})
}

// AssignedInspections handles GET /api/inspections/assigned
func (h *Handler) AssignedInspections(c *gin.Context) {
	u, _ := users.Current(c)
	h.renderList(c, func() ([]*Inspection, error) {
		return h.service.ListByAgent(c.Request.Context(), u.ID)
	})
}

// AllInspections handles GET /api/admin/inspections
func (h *Handler) AllInspections(c *gin.Context) {
	h.renderList(c, func() ([]*Inspection, error) {
		return h.service.ListAll(c.Request.Context())
	})
}

// UpdateInspection handles PUT /api/inspections/:id
func (h *Handler) UpdateInspection(c *gin.Context) {
	u, _ := users.Current(c)

	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	i, err := h.service.Update(c.Request.Context(), u, c.Param("id"), in)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inspection": i})
}

// GetAgentContact handles GET /api/inspections/:id/agent-contact
func (h *Handler) GetAgentContact(c *gin.Context) {
	u, _ := users.Current(c)

	contact, err := h.service.AgentContact(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": contact})
}

func (h *Handler) renderList(c *gin.Context, list func() ([]*Inspection, error)) {
	is, err := list()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inspections": is,
		"count":       len(is),
	})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Inspection not found",
		})
	case errors.Is(err, ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Property not found",
		})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You may not perform this action on this inspection",
		})
	case errors.Is(err, ErrPaymentIncomplete):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "payment_incomplete",
			"message": "Complete the inspection payment to view agent contact",
		})
	case errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_status",
			"message": "Status must be one of: pending, assigned, completed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
	}
}
