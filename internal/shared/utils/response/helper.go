package response

import (
	"cinetix/internal/shared/apperrors"
	"cinetix/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a service error to the standard envelope. Errors without a
// known kind are logged and reported as a generic internal failure.
func RespondError(c *gin.Context, err error) {
	code := apperrors.HTTPStatus(err)
	if apperrors.KindOf(err) == apperrors.KindUnknown {
		logger.GetDefault().LogHTTPError(c, err, code)
	}
	RespondJSON(c, "error", code, apperrors.ReasonOf(err), nil, nil)
}
