package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/swenshares/internal/application/service"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
	"github.com/garyjia/swenshares/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TransitionRequest is the body of POST /records/:kind/:id/transitions
type TransitionRequest struct {
	Target  string `json:"target" binding:"required"`
	Comment string `json:"comment"`
}

// HistoryResponse carries the audit trail and its rendered notes
type HistoryResponse struct {
	History []entity.AuditEntry `json:"history"`
	Notes   []string            `json:"notes"`
}

// ListRequest represents paging query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	if h.services.Health != nil {
		if err := h.services.Health(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateRecord handles POST /api/v1/records/:kind
func (h *Handlers) CreateRecord(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	rec, err := entity.New(kind)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %w", appwf.ErrNotFound, err))
		return
	}
	if err := json.NewDecoder(c.Request.Body).Decode(rec); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if rec.Kind() != kind {
		badRequest(c, fmt.Sprintf("body describes a %s, not a %s", rec.Kind(), kind))
		return
	}

	snap, err := h.services.Registry.Create(c.Request.Context(), rec, principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: snap})
}

// GetRecord handles GET /api/v1/records/:kind/:id
func (h *Handlers) GetRecord(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	snap, err := h.services.Registry.Get(c.Request.Context(), kind, c.Param("id"), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: snap})
}

// ListRecords handles GET /api/v1/records/:kind
func (h *Handlers) ListRecords(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	snaps, err := h.services.Registry.List(c.Request.Context(), kind, principalFrom(c), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: snaps})
}

// ExportRegister handles GET /api/v1/records/:kind/export.xlsx
func (h *Handlers) ExportRegister(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	snaps, err := h.services.Registry.List(c.Request.Context(), kind, principalFrom(c), 0, 0)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.services.Exporter.Write(&buf, kind, snaps); err != nil {
		h.logger.Error("Failed to export register", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export register",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-register.xlsx"`, kind))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Transition handles POST /api/v1/records/:kind/:id/transitions
func (h *Handlers) Transition(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	snap, err := h.services.Workflow.Transition(c.Request.Context(), appwf.TransitionRequest{
		Kind:      kind,
		ID:        c.Param("id"),
		Target:    workflow.State(req.Target),
		Principal: principalFrom(c),
		Comment:   utils.SanitizeString(req.Comment),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: snap})
}

// AvailableTransitions handles GET /api/v1/records/:kind/:id/transitions
func (h *Handlers) AvailableTransitions(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	targets, err := h.services.Workflow.AvailableTransitions(c.Request.Context(), kind, c.Param("id"), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if targets == nil {
		targets = []workflow.State{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: targets})
}

// History handles GET /api/v1/records/:kind/:id/history
func (h *Handlers) History(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	entries, err := h.services.Workflow.History(c.Request.Context(), kind, c.Param("id"), principalFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []entity.AuditEntry{}
	}

	notes := audit.RenderNotes(entries)
	if notes == nil {
		notes = []string{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    HistoryResponse{History: entries, Notes: notes},
	})
}

// kindParam parses :kind and answers 404 for unknown kinds
func (h *Handlers) kindParam(c *gin.Context) (workflow.Kind, bool) {
	kind, err := workflow.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   fmt.Sprintf("unknown record kind %q", c.Param("kind")),
		})
		return "", false
	}
	return kind, true
}

// fail writes err with the status matching its category
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		msg = "internal server error"
	}

	c.JSON(status, Response{Success: false, Error: msg})
}

// statusFor maps application errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, appwf.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, appwf.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, appwf.ErrCalculationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, appwf.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appwf.ErrInvalidRecord), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}
