package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/entity"
)

// AnnouncementRequest is the body of POST /announcements
type AnnouncementRequest struct {
	IssuingCompanyID string          `json:"issuing_company_id" binding:"required"`
	Type             string          `json:"type"`
	Description      string          `json:"description" binding:"required"`
	Quantity         int64           `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	ExpirationDate   string          `json:"expiration_date" binding:"required"`
}

// ExtendAnnouncementRequest is the body of POST /announcements/:id/extend
type ExtendAnnouncementRequest struct {
	NewExpirationDate string `json:"new_expiration_date" binding:"required"`
}

// CreateAnnouncement handles POST /api/v1/announcements
func (h *Handlers) CreateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	expires, err := time.Parse(dateLayout, req.ExpirationDate)
	if err != nil {
		badRequest(c, "expiration_date must be YYYY-MM-DD")
		return
	}

	a, err := h.services.Announcements.Create(c.Request.Context(), &entity.Announcement{
		IssuingCompanyID: req.IssuingCompanyID,
		Type:             req.Type,
		Description:      req.Description,
		Quantity:         req.Quantity,
		Price:            req.Price,
		ExpirationDate:   expires,
	}, principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: a})
}

// ListAnnouncements handles GET /api/v1/announcements
func (h *Handlers) ListAnnouncements(c *gin.Context) {
	list, err := h.services.Announcements.ListActive(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// MyAnnouncements handles GET /api/v1/announcements/mine
func (h *Handlers) MyAnnouncements(c *gin.Context) {
	list, err := h.services.Announcements.Mine(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// GetAnnouncement handles GET /api/v1/announcements/:id
func (h *Handlers) GetAnnouncement(c *gin.Context) {
	a, err := h.services.Announcements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: a})
}

// DeactivateAnnouncement handles POST /api/v1/announcements/:id/deactivate
func (h *Handlers) DeactivateAnnouncement(c *gin.Context) {
	a, err := h.services.Announcements.Deactivate(c.Request.Context(), c.Param("id"), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: a})
}

// ExtendAnnouncement handles POST /api/v1/announcements/:id/extend
func (h *Handlers) ExtendAnnouncement(c *gin.Context) {
	var req ExtendAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	newDate, err := time.Parse(dateLayout, req.NewExpirationDate)
	if err != nil {
		badRequest(c, "new_expiration_date must be YYYY-MM-DD")
		return
	}

	a, err := h.services.Announcements.ExtendExpiration(c.Request.Context(), c.Param("id"), newDate, principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: a})
}
