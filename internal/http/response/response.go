package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashpatel08/railsathi/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Message string   `json:"message"`
	Error   APIError `json:"error"`
}

type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Message: msg,
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondFailure maps err to its status and code. Errors that carry no
// status surface as a generic 500 without leaking their text.
func RespondFailure(c *gin.Context, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("Internal server error"))
		return
	}
	status := apierr.StatusOf(ae)
	if status >= http.StatusInternalServerError {
		RespondError(c, status, apierr.CodeOf(ae), errors.New("Internal server error"))
		return
	}
	RespondError(c, status, apierr.CodeOf(ae), ae)
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Message: message, Data: data})
}
