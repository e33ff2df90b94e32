package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON body of every failed request.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	Success        bool   `json:"success"`
	StatusText     string `json:"status"`
	ErrorMsg       string `json:"error,omitempty"`
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.HTTPStatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     http.StatusText(http.StatusBadRequest),
		ErrorMsg:       err.Error(),
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     http.StatusText(http.StatusNotFound),
		ErrorMsg:       fmt.Sprintf("%s with %s %v not found", resource, field, value),
	}
}

// ErrInternalServerError logs err and hides it from the client.
func ErrInternalServerError(err error) *Err {
	if err == nil {
		err = errors.New("unknown error")
	}
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		ErrorMsg:       "Something went wrong, please try again",
	}
}
