package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
}

func newBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// tenantID returns the authenticated tenant, or uuid.Nil for anonymous calls
func tenantID(c *gin.Context) uuid.UUID {
	id, _ := middleware.GetTenantID(c)
	return id
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response, deriving the status code from the error code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	h.respond(c, &dto.ErrorInfo{Code: code, Message: message})
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// HandleError converts domain errors to HTTP responses.
// Anything that is not a domain error is logged and reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if domainErr, ok := shared.AsDomainError(err); ok {
		h.respond(c, dto.ErrorInfoFromDomain(domainErr))
		return
	}

	h.logger.Error("Unhandled error",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON decodes the request body into obj and validates it.
// An empty body is validated as the zero value, so optional payloads may be omitted.
// It writes the error response itself and reports whether the handler should continue.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}
	h.bindError(c, err)
	return false
}

// BindQuery binds and validates query parameters into obj
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	fields := middleware.ValidationDetails(err)
	if fields == nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c, &dto.ErrorInfo{
		Code:    procurement.CodeValidationFailed,
		Message: "Request validation failed",
		Field:   fields[0].Field,
		Fields:  fields,
	})
}

// parseID parses a uuid path parameter
func (h *BaseHandler) parseID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

func (h *BaseHandler) respond(c *gin.Context, info *dto.ErrorInfo) {
	info.RequestID = middleware.GetRequestID(c)
	c.JSON(dto.GetHTTPStatus(info.Code), dto.NewErrorResponse(info))
}
