package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// DividendRequest is the body of POST /dividends
type DividendRequest struct {
	IssuingCompanyID    string          `json:"issuing_company_id" binding:"required"`
	GeneralAssemblyDate string          `json:"general_assembly_date" binding:"required"`
	PaymentDate         string          `json:"payment_date" binding:"required"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	PerShare            decimal.Decimal `json:"per_share"`
}

// CreateDividend handles POST /api/v1/dividends
func (h *Handlers) CreateDividend(c *gin.Context) {
	var req DividendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	assembly, err := time.Parse(dateLayout, req.GeneralAssemblyDate)
	if err != nil {
		badRequest(c, "general_assembly_date must be YYYY-MM-DD")
		return
	}
	payment, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		badRequest(c, "payment_date must be YYYY-MM-DD")
		return
	}

	d, err := h.services.Dividends.Create(c.Request.Context(), &entity.Dividend{
		IssuingCompanyID:    req.IssuingCompanyID,
		GeneralAssemblyDate: assembly,
		PaymentDate:         payment,
		TotalAmount:         req.TotalAmount,
		PerShare:            req.PerShare,
	}, principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: d})
}

// GetDividend handles GET /api/v1/dividends/:id
func (h *Handlers) GetDividend(c *gin.Context) {
	d, err := h.services.Dividends.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: d})
}

// ValidateDividend handles POST /api/v1/dividends/:id/validate
func (h *Handlers) ValidateDividend(c *gin.Context) {
	d, err := h.services.Dividends.Validate(c.Request.Context(), c.Param("id"), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: d})
}

// CancelDividendValidation handles POST /api/v1/dividends/:id/cancel-validation
func (h *Handlers) CancelDividendValidation(c *gin.Context) {
	d, err := h.services.Dividends.CancelValidation(c.Request.Context(), c.Param("id"), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: d})
}

// UpcomingDividends handles GET /api/v1/dividends/upcoming?issuing_company_id=
func (h *Handlers) UpcomingDividends(c *gin.Context) {
	companyID := c.Query("issuing_company_id")
	if companyID == "" {
		badRequest(c, "issuing_company_id is required")
		return
	}

	list, err := h.services.Dividends.Upcoming(c.Request.Context(), companyID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// ListNotifications handles GET /api/v1/notifications?unread=true
func (h *Handlers) ListNotifications(c *gin.Context) {
	unread := c.Query("unread") == "true"

	list, err := h.services.Notifications.List(c.Request.Context(), principalFrom(c), unread)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.services.Notifications.MarkRead(c.Request.Context(), c.Param("id"), principalFrom(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.services.Notifications.MarkAllRead(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"marked": n}})
}

// UnreadNotificationCount handles GET /api/v1/notifications/unread-count
func (h *Handlers) UnreadNotificationCount(c *gin.Context) {
	n, err := h.services.Notifications.UnreadCount(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"unread": n}})
}
