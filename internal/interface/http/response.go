package httpapi

import (
	"github.com/gin-gonic/gin"
)

const (
	errCodeBadRequest     = "BAD_REQUEST"
	errCodeInvalidFilters = "INVALID_FILTERS"
	errCodeCropNotFound   = "CROP_NOT_FOUND"
	errCodeItemNotFound   = "ITEM_NOT_FOUND"
	errCodeInsufficient   = "INSUFFICIENT_STOCK"
	errCodeReportTimeout  = "REPORT_TIMEOUT"
	errCodeExportFailed   = "EXPORT_FAILED"
	errCodeInternal       = "INTERNAL_ERROR"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// abortError 回傳錯誤 JSON 並中止後續 handler；err 為 nil 時以 message 作為 error。
func abortError(c *gin.Context, status int, code, message string, err error) {
	detail := message
	if err != nil {
		detail = err.Error()
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Success:   false,
		Message:   message,
		Error:     detail,
		ErrorCode: code,
	})
}
