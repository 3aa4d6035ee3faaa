package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps the error taxonomy onto HTTP statuses. Validation
// and slot-conflict errors carry their message to the caller; everything
// else is masked.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	message := "internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Kind.String()
		switch appErr.Kind {
		case apperrors.KindValidation:
			status = http.StatusBadRequest
			message = appErr.Message
		case apperrors.KindSlotConflict:
			status = http.StatusConflict
			message = appErr.Message
		case apperrors.KindNotFound:
			status = http.StatusNotFound
			message = appErr.Message
		case apperrors.KindAuth:
			status = http.StatusUnauthorized
			message = "authentication required"
		case apperrors.KindInfrastructure:
			status = http.StatusServiceUnavailable
			message = "service temporarily unavailable"
		}
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
