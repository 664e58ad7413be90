package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Data:    data,
		Message: message,
	})
}

func Error(c *gin.Context, status int, err error) {
	msg := "internal server error"
	if err != nil {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		zap.S().Errorf("api error: %s", msg)
	}

	c.JSON(status, Response{
		Code:    -1,
		Data:    nil,
		Message: msg,
	})
}
