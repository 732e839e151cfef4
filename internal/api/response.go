package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/snake-talk/internal/errors"
)

// respondOK 统一成功响应
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError 统一错误响应
// AppError按错误码映射HTTP状态，其他错误一律500
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if e, ok := err.(*apperrors.AppError); ok {
		appErr = e
	} else {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}

	requestID := c.GetHeader("X-Request-ID")
	c.JSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(appErr, requestID))
}
