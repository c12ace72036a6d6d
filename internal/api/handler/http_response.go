package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securepay/ledger/internal/domain/fault"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// MetaInfo carries pagination metadata for list endpoints
type MetaInfo struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
	TotalItems int64 `json:"totalItems"`
}

// PaginatedData wraps a page of items together with its metadata
type PaginatedData struct {
	Items interface{} `json:"items"`
	Meta  MetaInfo    `json:"meta"`
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// RespondPaginated sends a 200 OK response with a page of items
func RespondPaginated(c *gin.Context, message string, items interface{}, page, perPage int, totalItems int64) {
	totalPages := int(totalItems) / perPage
	if int(totalItems)%perPage > 0 {
		totalPages++
	}

	RespondOK(c, message, PaginatedData{
		Items: items,
		Meta: MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	})
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	c.JSON(http.StatusNotFound, Response{Success: false, Message: message})
}

// RespondConflict sends a 409 Conflict response
func RespondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{Success: false, Message: message})
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "An internal server error occurred"})
}

// RespondFault translates a classified error into the envelope, exposing only the
// caller-safe message. Raw failure detail stays in the operator logs.
func RespondFault(c *gin.Context, err error) {
	message := fault.SafeMessage(err)

	switch fault.KindOf(err) {
	case fault.KindValidation:
		RespondBadRequest(c, message)
	case fault.KindInsufficientFunds:
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Message: message})
	case fault.KindNotFound:
		RespondNotFound(c, message)
	case fault.KindDuplicateKey, fault.KindConflict:
		RespondConflict(c, message)
	case fault.KindUnavailable:
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Message: message})
	default:
		RespondInternalError(c)
	}
}
