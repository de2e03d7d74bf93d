// Package handler exposes the bookkeeping services over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/logger"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
	"github.com/mandibooks/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	// metrics may be nil
	metrics *telemetry.LedgerMetrics
}

// tenantID returns the acting tenant set by the tenant middleware
func tenantID(c *gin.Context) uuid.UUID {
	return middleware.GetTenantID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessPage sends one page of a listing
func (h *BaseHandler) SuccessPage(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 with the given code
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorInfo{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	}))
}

// HandleError converts a service error into a response. Domain errors keep
// their code and details; anything else is logged and reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, operation string, err error) {
	status, info := dto.FromError(err)
	info.RequestID = middleware.GetRequestID(c)

	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
	} else {
		h.metrics.RecordRejection(c.Request.Context(), operation, info.Code)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(info))
}

// bind decodes the JSON body into req. On failure the response has been
// written and bind returns false.
func (h *BaseHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleBindError(c, err)
		return false
	}
	return true
}

// pathID parses a uuid path parameter. On failure the response has been
// written and ok is false.
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidID, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// paging reads page and page_size, clamping them to sane bounds
func paging(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// parseDate reads a YYYY-MM-DD date. An empty value is today.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, shared.NewValidationError(field, "must be a date in YYYY-MM-DD form")
	}
	return d, nil
}

// parseRange reads the optional from and to query dates
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = parseDate("from", v); err != nil {
			return from, to, err
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = parseDate("to", v); err != nil {
			return from, to, err
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, shared.NewValidationError("to", "must not be before from")
	}
	return from, to, nil
}
